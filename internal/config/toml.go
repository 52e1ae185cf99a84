// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	General GeneralConfig `toml:"general"`
	Store   StoreConfig   `toml:"store"`
	Timer   TimerConfig   `toml:"timer"`
	Server  ServerConfig  `toml:"server"`
}

// GeneralConfig maps user and logging settings.
type GeneralConfig struct {
	User      *string `toml:"user"`
	LogLevel  *string `toml:"log-level"`
	Quotes    *string `toml:"quotes"`
	DailyGoal *int    `toml:"daily-goal"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend     *string `toml:"backend"`
	Path        *string `toml:"path"`
	PostgresDSN *string `toml:"postgres-dsn"`
}

// TimerConfig maps focus timer settings.
type TimerConfig struct {
	Preset *string `toml:"preset"`
	Focus  *int    `toml:"focus"`
	Break  *int    `toml:"break"`
}

// ServerConfig maps HTTP API settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
