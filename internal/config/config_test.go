package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_PORT", "LOG_LEVEL", "REMOTE_BASE_URL", "REMOTE_TIMEOUT_SECONDS", "REMOTE_RATE_LIMIT_RPS",
		"REMOTE_RATE_LIMIT_BURST", "RETRY_MAX_ATTEMPTS", "BREAKER_ENABLED", "API_RATE_LIMIT_RPS",
		"API_RATE_LIMIT_BURST", "MAX_UPLOAD_MB", "NATS_URL", "NATS_SUBJECT", "OPEN_VIDEO_IN_BROWSER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "" {
		t.Fatalf("expected no source, got %q", cfg.Source)
	}
	if cfg.RemoteBaseURL != "http://127.0.0.1:5001" {
		t.Fatalf("expected default remote url, got %q", cfg.RemoteBaseURL)
	}
	if !cfg.BreakerEnabled || cfg.RetryMaxAttempts != 3 || cfg.NATSURL != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RemoteTimeout() != 120*time.Second || cfg.MaxUploadBytes() != 200<<20 {
		t.Fatalf("unexpected derived values %s %d", cfg.RemoteTimeout(), cfg.MaxUploadBytes())
	}
}

func TestLoadAppliesYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("remote_base_url: http://analyzer:5001\nbreaker_enabled: false\nremote_rate_limit_rps: 2.5\nnats_url: nats://bus:4222\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("NATS_URL", "nats://override:4222")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != path {
		t.Fatalf("expected source %q, got %q", path, cfg.Source)
	}
	if cfg.RemoteBaseURL != "http://analyzer:5001" || cfg.BreakerEnabled || cfg.RemoteRateLimitRPS != 2.5 {
		t.Fatalf("expected yaml values, got %+v", cfg)
	}
	if cfg.NATSURL != "nats://override:4222" || cfg.RetryMaxAttempts != 5 {
		t.Fatalf("expected env overrides, got %+v", cfg)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected untouched default port, got %q", cfg.APIPort)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_port: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadIgnoresUnparsableEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "soon")
	t.Setenv("BREAKER_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RemoteTimeoutSeconds != 120 || !cfg.BreakerEnabled {
		t.Fatalf("expected fallbacks, got %+v", cfg)
	}
}
