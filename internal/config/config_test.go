package config

import (
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("LUXSUV_API_URL", "https://luxsuv-backend.fly.dev")
}

func TestLoad_RequiredVarSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.APIBaseURL != "https://luxsuv-backend.fly.dev" {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "https://luxsuv-backend.fly.dev")
	}
}

func TestLoad_MissingRequiredVar_ReturnsError(t *testing.T) {
	t.Setenv("LUXSUV_API_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when LUXSUV_API_URL is not set")
	}
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	// ベースURLの末尾スラッシュはパス結合時の二重スラッシュを避けるため除去する
	t.Setenv("LUXSUV_API_URL", "https://luxsuv-backend.fly.dev/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.APIBaseURL != "https://luxsuv-backend.fly.dev" {
		t.Errorf("APIBaseURL = %q, want trailing slash removed", cfg.APIBaseURL)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want %v", cfg.HTTPTimeout, 30*time.Second)
	}
	if cfg.WatchInterval != 5*time.Minute {
		t.Errorf("WatchInterval = %v, want %v", cfg.WatchInterval, 5*time.Minute)
	}
	if cfg.StatusAddr != "127.0.0.1:9590" {
		t.Errorf("StatusAddr = %q, want %q", cfg.StatusAddr, "127.0.0.1:9590")
	}
	if cfg.StatusRateLimit != 120 {
		t.Errorf("StatusRateLimit = %d, want %d", cfg.StatusRateLimit, 120)
	}
	if cfg.SecretsDir == "" {
		t.Error("SecretsDir should have a default value")
	}
}

func TestLoad_OverrideValues(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("LUXSUV_HTTP_TIMEOUT", "10s")
	t.Setenv("LUXSUV_SECRETS_DIR", "/tmp/luxsuv-test")
	t.Setenv("LUXSUV_WATCH_INTERVAL", "1m")
	t.Setenv("LUXSUV_STATUS_ADDR", "127.0.0.1:19590")
	t.Setenv("LUXSUV_STATUS_RATE_LIMIT", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want %v", cfg.HTTPTimeout, 10*time.Second)
	}
	if cfg.SecretsDir != "/tmp/luxsuv-test" {
		t.Errorf("SecretsDir = %q, want %q", cfg.SecretsDir, "/tmp/luxsuv-test")
	}
	if cfg.WatchInterval != time.Minute {
		t.Errorf("WatchInterval = %v, want %v", cfg.WatchInterval, time.Minute)
	}
	if cfg.StatusAddr != "127.0.0.1:19590" {
		t.Errorf("StatusAddr = %q, want %q", cfg.StatusAddr, "127.0.0.1:19590")
	}
	if cfg.StatusRateLimit != 60 {
		t.Errorf("StatusRateLimit = %d, want %d", cfg.StatusRateLimit, 60)
	}
}

func TestLoad_InvalidDuration_FallsBackToDefault(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("LUXSUV_HTTP_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want default %v", cfg.HTTPTimeout, 30*time.Second)
	}
}
