package config_test

import (
	"testing"
	"time"

	"github.com/iho/gotransfer/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.RedisURL != "" {
		t.Fatalf("expected redis to be disabled by default, got %q", cfg.RedisURL)
	}

	if cfg.TransferTimezone != "UTC" || cfg.AmountExponent != 2 {
		t.Fatalf("unexpected transfer defaults: tz=%s exponent=%d", cfg.TransferTimezone, cfg.AmountExponent)
	}

	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("expected default idempotency TTL of 24h, got %s", cfg.IdempotencyTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("TRANSFER_TIMEZONE", "Europe/Kyiv")
	t.Setenv("AMOUNT_EXPONENT", "0")
	t.Setenv("TRANSFER_MAX_RETRIES", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.TransferTimezone != "Europe/Kyiv" || cfg.AmountExponent != 0 || cfg.MaxRetries != 5 {
		t.Fatalf("unexpected transfer settings: tz=%s exponent=%d retries=%d", cfg.TransferTimezone, cfg.AmountExponent, cfg.MaxRetries)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "duration", key: "IDEMPOTENCY_TTL", value: "not-a-duration"},
		{name: "timezone", key: "TRANSFER_TIMEZONE", value: "Mars/Olympus"},
		{name: "exponent", key: "AMOUNT_EXPONENT", value: "19"},
		{name: "retries", key: "TRANSFER_MAX_RETRIES", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for invalid %s", tt.key)
			}
		})
	}
}
