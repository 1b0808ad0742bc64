package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, 50, cfg.Batch.CheckpointCycle)
	assert.Equal(t, 50, cfg.Batch.DetailMaxCycle)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Equal(t, "xlsx", cfg.Export.Format)

	require.NoError(t, validate.Struct(cfg))
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Batch.CheckpointCycle)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Equal(t, "xlsx", cfg.Export.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CAM_BATCH_WORKERS", "4")
	t.Setenv("CAM_BATCH_CHECKPOINT_CYCLE", "100")
	t.Setenv("CAM_EXPORT_FORMAT", "csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, 100, cfg.Batch.CheckpointCycle)
	assert.Equal(t, "csv", cfg.Export.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "export:\n  dir: custom-reports\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "custom-reports", cfg.Export.Dir)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown export format", key: "CAM_EXPORT_FORMAT", value: "tsv"},
		{name: "checkpoint below minimum", key: "CAM_BATCH_CHECKPOINT_CYCLE", value: "1"},
		{name: "unknown log output", key: "CAM_LOGGING_OUTPUT", value: "syslog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestMergeConfigs(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Export.Dir = "from-file"
	fileCfg.Batch.Workers = 8

	envCfg := Config{}
	envCfg.Batch.Workers = 2

	merged := mergeConfigs(fileCfg, envCfg)

	// Env wins where set, file fills the gaps.
	assert.Equal(t, 2, merged.Batch.Workers)
	assert.Equal(t, "from-file", merged.Export.Dir)
}
