package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr            string `yaml:"addr"`
	BaseURL         string `yaml:"base_url"`
	DatabaseURL     string `yaml:"database_url"`
	DatabaseReadURL string `yaml:"database_read_url"`
	BodyLimitMB     int    `yaml:"body_limit_mb"`
	LogLevel        string `yaml:"log_level"`
}

// Load builds the configuration from an optional YAML file named by
// CONFIG_FILE, with environment variables taking precedence over both
// the file and the defaults.
func Load() (Config, error) {
	cfg := Config{
		Addr:        ":12806",
		BodyLimitMB: 256,
		LogLevel:    "info",
	}
	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Addr = env("APP_ADDR", cfg.Addr)
	cfg.BaseURL = strings.TrimRight(env("BASE_URL", cfg.BaseURL), "/")
	cfg.DatabaseURL = env("DATABASE_URL", cfg.DatabaseURL)
	cfg.DatabaseReadURL = env("DATABASE_READ_URL", cfg.DatabaseReadURL)
	cfg.BodyLimitMB = envInt("HTTP_BODY_LIMIT_MB", cfg.BodyLimitMB)
	cfg.LogLevel = env("LOG_LEVEL", cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database_url is required")
	}
	if cfg.DatabaseReadURL == "" {
		cfg.DatabaseReadURL = cfg.DatabaseURL
	}
	return cfg, nil
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
