// Package config loads application configuration from a TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	SQLite  SQLiteConfig  `koanf:"sqlite"`
	Logging LoggingConfig `koanf:"logging"`
	Auth    AuthConfig    `koanf:"auth"`
	Alerts  AlertsConfig  `koanf:"alerts"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int           `koanf:"port"`
	Host              string        `koanf:"host"`
	HTTPServerTimeout time.Duration `koanf:"http_server_timeout"`
}

// SQLiteConfig holds database settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// AuthConfig holds identity settings. Authentication proper lives outside
// this service; admin emails are seeded as users on boot.
type AuthConfig struct {
	AdminEmails []string `koanf:"admin_emails"`
}

// AlertsConfig holds alert engine settings.
type AlertsConfig struct {
	// SweepInterval controls how often expired active alerts get their
	// status flipped in bulk. Expiry is still evaluated lazily on every
	// query; the sweep only persists it. Zero disables the sweeper.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// Load reads configuration from the given TOML file, then applies
// BEACON_-prefixed environment variables on top (BEACON_SERVER__PORT=8125
// overrides server.port).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("error loading config file: %w", err)
	}

	if err := k.Load(env.Provider("BEACON_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "BEACON_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8125
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.HTTPServerTimeout == 0 {
		cfg.Server.HTTPServerTimeout = 30 * time.Second
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "beacon.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Alerts.SweepInterval == 0 {
		cfg.Alerts.SweepInterval = 5 * time.Minute
	}
}
