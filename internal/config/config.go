// Package config provides configuration management for the backtesting engine.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/goldspanlabs/optopsy-mcp/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig holds data location configuration.
type DataConfig struct {
	Dir      string `mapstructure:"dir"`      // directory holding chain/OHLCV CSV files
	Database string `mapstructure:"database"` // SQLite cache path
}

// DefaultsConfig holds default simulation parameters applied when a
// command omits them.
type DefaultsConfig struct {
	Capital       float64 `mapstructure:"capital"`
	Quantity      int     `mapstructure:"quantity"`
	Multiplier    int     `mapstructure:"multiplier"`
	MaxPositions  int     `mapstructure:"max_positions"`
	MaxEntryDTE   int     `mapstructure:"max_entry_dte"`
	ExitDTE       int     `mapstructure:"exit_dte"`
	DTEInterval   int     `mapstructure:"dte_interval"`
	DeltaInterval float64 `mapstructure:"delta_interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/optopsy"
	}
	return filepath.Join(home, ".config", "optopsy")
}

// Load loads configuration from the specified directory. Missing files
// fall back to defaults; a malformed file is an error.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("OPTOPSY")
	v.AutomaticEnv()

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errors.Wrap(errors.ErrConfigInvalid, err.Error())
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, err.Error())
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("data.dir", filepath.Join(configDir, "data"))
	v.SetDefault("data.database", filepath.Join(configDir, "optopsy.db"))

	v.SetDefault("defaults.capital", 100000.0)
	v.SetDefault("defaults.quantity", 1)
	v.SetDefault("defaults.multiplier", 100)
	v.SetDefault("defaults.max_positions", 5)
	v.SetDefault("defaults.max_entry_dte", 45)
	v.SetDefault("defaults.exit_dte", 7)
	v.SetDefault("defaults.dte_interval", 7)
	v.SetDefault("defaults.delta_interval", 0.05)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "optopsy.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)
}
