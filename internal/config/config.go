package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Batch   BatchConfig   `yaml:"batch" envconfig:"BATCH"`
	Export  ExportConfig  `yaml:"export" envconfig:"EXPORT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/cyclereport.log"`
}

// BatchConfig controls how a batch of test files is processed
type BatchConfig struct {
	// CheckpointCycle is the single retention checkpoint reported in the
	// cross-protocol summary for cycle-life files.
	CheckpointCycle int `yaml:"checkpoint_cycle" envconfig:"CHECKPOINT_CYCLE" default:"50" validate:"min=2"`
	// DetailMaxCycle is the last cycle included in the per-cycle retention
	// and drift curves of the cycle-life detail report.
	DetailMaxCycle int `yaml:"detail_max_cycle" envconfig:"DETAIL_MAX_CYCLE" default:"50" validate:"min=2"`
	// Workers bounds concurrent file processing. 1 keeps the batch strictly
	// sequential.
	Workers int `yaml:"workers" envconfig:"WORKERS" default:"1" validate:"min=1"`
	// MinFileSizeKB/MaxFileSizeKB define the size window for input files;
	// files outside it are dropped during discovery. Zero max disables the
	// upper bound.
	MinFileSizeKB int `yaml:"min_file_size_kb" envconfig:"MIN_FILE_SIZE_KB" default:"0" validate:"min=0"`
	MaxFileSizeKB int `yaml:"max_file_size_kb" envconfig:"MAX_FILE_SIZE_KB" default:"0" validate:"min=0"`
}

// ExportConfig controls report output
type ExportConfig struct {
	// Format selects the summary report format: xlsx or csv. The cycle-life
	// detail workbook is always xlsx, it needs multiple sheets.
	Format string `yaml:"format" envconfig:"FORMAT" default:"xlsx" validate:"oneof=xlsx csv"`
	Dir    string `yaml:"dir" envconfig:"DIR"`
}

var validate = validator.New()

// Load loads configuration from environment variables and config file.
// Environment variables (prefix CAM) take precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CAM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Batch.CheckpointCycle == 0 {
		envConfig.Batch.CheckpointCycle = fileConfig.Batch.CheckpointCycle
	}
	if envConfig.Batch.DetailMaxCycle == 0 {
		envConfig.Batch.DetailMaxCycle = fileConfig.Batch.DetailMaxCycle
	}
	if envConfig.Batch.Workers == 0 {
		envConfig.Batch.Workers = fileConfig.Batch.Workers
	}
	if envConfig.Export.Format == "" {
		envConfig.Export.Format = fileConfig.Export.Format
	}
	if envConfig.Export.Dir == "" {
		envConfig.Export.Dir = fileConfig.Export.Dir
	}
	return envConfig
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/cyclereport.log",
		},
		Batch: BatchConfig{
			CheckpointCycle: 50,
			DetailMaxCycle:  50,
			Workers:         1,
		},
		Export: ExportConfig{
			Format: "xlsx",
		},
	}
}
