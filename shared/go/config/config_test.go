package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/mediashelf")
	t.Setenv("JWT_SECRET", "test-secret-at-least-16")
}

func TestLoadDatabaseTimeoutDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.PingTimeout != 5*time.Second {
		t.Fatalf("expected 5s ping timeout, got %s", cfg.Database.PingTimeout)
	}
	if cfg.Database.ConnectWait != 30*time.Second {
		t.Fatalf("expected 30s connect wait, got %s", cfg.Database.ConnectWait)
	}
}

func TestLoadDatabaseTimeoutOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_PING_TIMEOUT", "2s")
	t.Setenv("DB_CONNECT_WAIT", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.PingTimeout != 2*time.Second {
		t.Fatalf("expected 2s ping timeout, got %s", cfg.Database.PingTimeout)
	}
	if cfg.Database.ConnectWait != time.Minute {
		t.Fatalf("expected 1m connect wait, got %s", cfg.Database.ConnectWait)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_CONNECT_WAIT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret-at-least-16")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}
