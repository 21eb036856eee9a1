// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jdfalk/voicematch/internal/matcher"
	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names (VOICEMATCH_BANK_PATH).
const EnvPrefix = "VOICEMATCH"

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// RateLimitConfig bounds match requests per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// AdminConfig guards the bank reload endpoint. An empty username leaves it open.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config holds application configuration
type Config struct {
	BankPath        string             `yaml:"bank_path"`
	WatchBank       bool               `yaml:"watch_bank"`
	DefaultLanguage normalize.Language `yaml:"default_language"`
	Thresholds      matcher.Policy     `yaml:"thresholds"`
	CacheTTL        time.Duration      `yaml:"cache_ttl"`
	MaxBodyBytes    int64              `yaml:"max_body_bytes"`
	Server          ServerConfig       `yaml:"server"`
	RateLimit       RateLimitConfig    `yaml:"rate_limit"`
	Admin           AdminConfig        `yaml:"admin"`
	LogLevel        string             `yaml:"log_level"`
	Log             LogConfig          `yaml:"log"`
}

// LogConfig enables a rotated log file in addition to stderr.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

var AppConfig Config

// SetDefaults registers default values with viper.
func SetDefaults() {
	viper.SetDefault("bank_path", "questions.yaml")
	viper.SetDefault("watch_bank", false)
	viper.SetDefault("default_language", string(normalize.Tagalog))
	viper.SetDefault("thresholds.auto_accept", matcher.DefaultAutoAccept)
	viper.SetDefault("thresholds.suggest", matcher.DefaultSuggest)
	viper.SetDefault("cache_ttl", "30m")
	viper.SetDefault("max_body_bytes", 64*1024)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("rate_limit.requests_per_minute", 120)
	viper.SetDefault("rate_limit.burst", 20)
	viper.SetDefault("admin.username", "")
	viper.SetDefault("admin.password", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.max_size_mb", 32)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age_days", 14)
	viper.SetDefault("log.compress", false)
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	lang, err := normalize.ParseLanguage(viper.GetString("default_language"))
	if err != nil {
		lang = normalize.Tagalog
	}

	AppConfig = Config{
		BankPath:        viper.GetString("bank_path"),
		WatchBank:       viper.GetBool("watch_bank"),
		DefaultLanguage: lang,
		Thresholds: matcher.Policy{
			AutoAccept: viper.GetFloat64("thresholds.auto_accept"),
			Suggest:    viper.GetFloat64("thresholds.suggest"),
		},
		CacheTTL:     viper.GetDuration("cache_ttl"),
		MaxBodyBytes: viper.GetInt64("max_body_bytes"),
		Server: ServerConfig{
			Host:         viper.GetString("server.host"),
			Port:         viper.GetString("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
			IdleTimeout:  viper.GetDuration("server.idle_timeout"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: viper.GetInt("rate_limit.requests_per_minute"),
			Burst:             viper.GetInt("rate_limit.burst"),
		},
		Admin: AdminConfig{
			Username: viper.GetString("admin.username"),
			Password: viper.GetString("admin.password"),
		},
		LogLevel: strings.ToLower(viper.GetString("log_level")),
		Log: LogConfig{
			File:       viper.GetString("log.file"),
			MaxSizeMB:  viper.GetInt("log.max_size_mb"),
			MaxBackups: viper.GetInt("log.max_backups"),
			MaxAgeDays: viper.GetInt("log.max_age_days"),
			Compress:   viper.GetBool("log.compress"),
		},
	}
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if !c.DefaultLanguage.Valid() {
		return fmt.Errorf("default_language %q is not supported", c.DefaultLanguage)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}
	if c.Admin.Username != "" && c.Admin.Password == "" {
		return fmt.Errorf("admin.password is required when admin.username is set")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}
