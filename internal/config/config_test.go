package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lovault")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":12806" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.DatabaseReadURL != cfg.DatabaseURL {
		t.Fatalf("DatabaseReadURL = %q, want the write URL", cfg.DatabaseReadURL)
	}
	if cfg.BodyLimitMB != 256 {
		t.Fatalf("BodyLimitMB = %d", cfg.BodyLimitMB)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load() without DATABASE_URL succeeded")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("addr: \":9000\"\ndatabase_url: postgres://filehost/db\nbase_url: http://files.example.com/media/\n")
	if err := os.WriteFile(file, raw, 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", file)
	t.Setenv("APP_ADDR", ":7000")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("Addr = %q, want env override", cfg.Addr)
	}
	if cfg.DatabaseURL != "postgres://filehost/db" {
		t.Fatalf("DatabaseURL = %q, want file value", cfg.DatabaseURL)
	}
	if cfg.BaseURL != "http://files.example.com/media" {
		t.Fatalf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
}
