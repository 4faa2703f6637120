package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DBPath != "noteboard.db" {
		t.Errorf("expected default db path noteboard.db, got %s", cfg.DBPath)
	}
	if cfg.TokenTTLMinutes != 60 {
		t.Errorf("expected default token ttl 60, got %d", cfg.TokenTTLMinutes)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("expected empty default redis addr, got %s", cfg.RedisAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("TOKEN_TTL_MINUTES", "15")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_PRETTY", "true")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("expected db path /tmp/test.db, got %s", cfg.DBPath)
	}
	if cfg.TokenTTLMinutes != 15 {
		t.Errorf("expected token ttl 15, got %d", cfg.TokenTTLMinutes)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("expected redis addr localhost:6379, got %s", cfg.RedisAddr)
	}
	if !cfg.LogPretty {
		t.Error("expected pretty logging enabled")
	}
}

func TestLoadInvalidTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL_MINUTES", "notanumber")

	cfg := Load()
	if cfg.TokenTTLMinutes != 60 {
		t.Errorf("expected fallback token ttl 60, got %d", cfg.TokenTTLMinutes)
	}
	if cfg.TokenTTL() != time.Hour {
		t.Errorf("expected 1h token ttl, got %s", cfg.TokenTTL())
	}
}
