package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user-tunable settings read from ~/.stride/config.yaml.
// Every field has a default; a missing file is not an error.
type Config struct {
	DatabasePath string `yaml:"database_path"`
	UserID       string `yaml:"user_id"`
	TrendWindow  int    `yaml:"trend_window"`
	HistoryLimit int    `yaml:"history_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UserID:       "local",
		TrendWindow:  3,
		HistoryLimit: 10,
	}
}

// Dir returns the stride home directory (~/.stride).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".stride"), nil
}

// Load reads config.yaml from the stride directory, falling back to
// defaults for the file itself and for any unset field.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	// Re-apply defaults for fields the file left empty or zeroed.
	def := Default()
	if cfg.UserID == "" {
		cfg.UserID = def.UserID
	}
	if cfg.TrendWindow <= 0 {
		cfg.TrendWindow = def.TrendWindow
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	return cfg, nil
}
