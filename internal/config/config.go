// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the tracking service.
type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	// PublicBaseURL is embedded into tracking URLs handed to GPS loggers.
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	// RedisAddr switches the rate limiter to a shared counter store when
	// set; empty keeps the in-process store.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// NATSURL enables position fan-out when set.
	NATSURL string `mapstructure:"NATS_URL"`

	MetricsAddr string `mapstructure:"METRICS_ADDR"`

	RateLimitPerMinute int `mapstructure:"RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from env vars and an optional .env file in
// the given path.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(path, ".env"))
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 12)

	// Unmarshal only sees env-provided values for keys viper knows about.
	for _, key := range []string{
		"SERVER_PORT", "DATABASE_URL", "JWT_SECRET", "CLIENT_ORIGIN",
		"PUBLIC_BASE_URL", "REDIS_ADDR", "REDIS_PASSWORD", "NATS_URL",
		"METRICS_ADDR", "RATE_LIMIT_PER_MINUTE",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config.LoadConfig: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config.LoadConfig unmarshal: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config.LoadConfig: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config.LoadConfig: JWT_SECRET is required")
	}
	return cfg, nil
}
