package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camcli/internal/config"
)

func TestInitializeLogger_FileOutput(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logPath := filepath.Join(t.TempDir(), "logs", "cyclereport.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("batch starting", slog.Int("file_count", 3))
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"batch starting"`)
	assert.Contains(t, string(data), `"file_count":3`)
}

func TestInitializeLogger_Once(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "stdout"})
	require.NoError(t, err)

	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "stdout"})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRunIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logPath := filepath.Join(t.TempDir(), "run.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-42")
	logger.InfoContext(ctx, "processing file")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"run-42"`)
}

func TestRunIDContext(t *testing.T) {
	assert.Empty(t, GetRunID(context.Background()))

	ctx := WithRunID(context.Background(), "run-7")
	assert.Equal(t, "run-7", GetRunID(ctx))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.level), tt.level)
	}
}

func TestLoggerFromContext(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logger := LoggerFromContext(context.Background())
	require.NotNil(t, logger)

	withRun := LoggerFromContext(WithRunID(context.Background(), "run-9"))
	require.NotNil(t, withRun)
	assert.NotSame(t, logger, withRun)
}

func TestOpenLogFileCreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "deep", "nested", "app.log")
	file, err := openLogFile(logPath)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.True(t, strings.HasSuffix(logPath, "app.log"))
}
