package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"TECHMART_SOURCE", "TECHMART_TABLE", "TECHMART_CACHE_TTL", "TECHMART_HTTP_TIMEOUT", "TECHMART_JOB_QUEUE_SIZE", "PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Source != DefaultSource {
		t.Errorf("Source = %q, want default", cfg.Source)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %s, want 10m", cfg.CacheTTL)
	}
	if cfg.Table != "transactions" {
		t.Errorf("Table = %q, want transactions", cfg.Table)
	}
	if cfg.QueueSize != 100 {
		t.Errorf("QueueSize = %d, want 100", cfg.QueueSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("TECHMART_SOURCE", "sqlite:///tmp/techmart.db")
	t.Setenv("TECHMART_CACHE_TTL", "90s")
	t.Setenv("TECHMART_HTTP_TIMEOUT", "15")
	t.Setenv("PORT", "9090")
	t.Setenv("TECHMART_JOB_QUEUE_SIZE", "8")

	cfg := Load()

	if cfg.Source != "sqlite:///tmp/techmart.db" {
		t.Errorf("Source = %q", cfg.Source)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %s, want 90s", cfg.CacheTTL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %s, want 15s", cfg.HTTPTimeout)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.QueueSize != 8 {
		t.Errorf("QueueSize = %d, want 8", cfg.QueueSize)
	}
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("TECHMART_TEST_TTL", "soon")
	if got := GetEnvDuration("TECHMART_TEST_TTL", time.Minute); got != time.Minute {
		t.Errorf("GetEnvDuration() = %s, want fallback 1m", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TECHMART_TEST_INT", "12")
	if got := GetEnvInt("TECHMART_TEST_INT", 3); got != 12 {
		t.Errorf("GetEnvInt() = %d, want 12", got)
	}
	t.Setenv("TECHMART_TEST_INT", "twelve")
	if got := GetEnvInt("TECHMART_TEST_INT", 3); got != 3 {
		t.Errorf("GetEnvInt() = %d, want fallback 3", got)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Source: "file:///data.csv", Table: "transactions", CacheTTL: time.Minute, HTTPTimeout: time.Second, QueueSize: 10}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing source", mutate: func(c *Config) { c.Source = " " }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.CacheTTL = 0 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.HTTPTimeout = -time.Second }, wantErr: true},
		{name: "missing table", mutate: func(c *Config) { c.Table = "" }, wantErr: true},
		{name: "zero queue size", mutate: func(c *Config) { c.QueueSize = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
