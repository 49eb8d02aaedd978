// Package config provides configuration loading for the plan service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Telegram TelegramConfig `koanf:"telegram"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// AuthConfig seeds the owning user's profile. The API token is the bearer
// credential for every /api/v1 call.
type AuthConfig struct {
	UserID   string `koanf:"user_id"`
	Username string `koanf:"username"`
	APIToken string `koanf:"api_token"`
}

// TelegramConfig configures the capture webhook. Ideas captured through it
// are owned by OwnerID, a placeholder profile created at startup.
type TelegramConfig struct {
	BotToken   string  `koanf:"bot_token"`
	OwnerID    string  `koanf:"owner_id"`
	RatePerSec float64 `koanf:"rate_per_sec"`
	RateBurst  int     `koanf:"rate_burst"`
}

type LoggingConfig struct {
	Development bool `koanf:"development"`
}

// Load reads configuration from the YAML file at path (skipped when the
// file does not exist), overrides it with environment variables
// (SERVER_PORT, TELEGRAM_BOT_TOKEN, ...) and applies defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if content, err := os.ReadFile(path); err == nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// SERVER_SHUTDOWN_TIMEOUT -> server.shutdown_timeout: split on the
	// first underscore only, section names never contain one.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		lower := strings.ToLower(s)
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "plan.db"
	}
	if cfg.Auth.UserID == "" {
		cfg.Auth.UserID = "00000000-0000-0000-0000-000000000001"
	}
	if cfg.Auth.Username == "" {
		cfg.Auth.Username = "owner"
	}
	if cfg.Telegram.OwnerID == "" {
		cfg.Telegram.OwnerID = "00000000-0000-0000-0000-0000000000ff"
	}
	if cfg.Telegram.RatePerSec == 0 {
		cfg.Telegram.RatePerSec = 5
	}
	if cfg.Telegram.RateBurst == 0 {
		cfg.Telegram.RateBurst = 10
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Telegram.RatePerSec <= 0 {
		return fmt.Errorf("telegram rate must be positive")
	}
	return nil
}
