// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type thresholdsView struct {
	AutoAccept float64 `yaml:"auto_accept"`
	Suggest    float64 `yaml:"suggest"`
}

type serverView struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	IdleTimeout  string `yaml:"idle_timeout"`
}

// fileView is the YAML shape written by SaveConfigToFile. Durations are
// written as strings so viper can read the file back.
type fileView struct {
	BankPath        string          `yaml:"bank_path"`
	WatchBank       bool            `yaml:"watch_bank"`
	DefaultLanguage string          `yaml:"default_language"`
	CacheTTL        string          `yaml:"cache_ttl"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes"`
	LogLevel        string          `yaml:"log_level"`
	Thresholds      thresholdsView  `yaml:"thresholds"`
	Server          serverView      `yaml:"server"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	Admin           AdminConfig     `yaml:"admin"`
	Log             LogConfig       `yaml:"log"`
}

// MarshalYAML renders c in the config file format.
func (c Config) MarshalYAML() (any, error) {
	var v fileView
	v.BankPath = c.BankPath
	v.WatchBank = c.WatchBank
	v.DefaultLanguage = c.DefaultLanguage.String()
	v.CacheTTL = c.CacheTTL.String()
	v.MaxBodyBytes = c.MaxBodyBytes
	v.LogLevel = c.LogLevel
	v.Thresholds.AutoAccept = c.Thresholds.AutoAccept
	v.Thresholds.Suggest = c.Thresholds.Suggest
	v.Server.Host = c.Server.Host
	v.Server.Port = c.Server.Port
	v.Server.ReadTimeout = c.Server.ReadTimeout.String()
	v.Server.WriteTimeout = c.Server.WriteTimeout.String()
	v.Server.IdleTimeout = c.Server.IdleTimeout.String()
	v.RateLimit = c.RateLimit
	v.Admin = c.Admin
	v.Log = c.Log
	return v, nil
}

// SaveConfigToFile writes AppConfig to path as YAML, creating parent
// directories. An existing file is only replaced when overwrite is set.
func SaveConfigToFile(path string, overwrite bool) error {
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := yaml.Marshal(AppConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("[INFO] configuration saved to file: %s", path)
	return nil
}
