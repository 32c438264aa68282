package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config.yaml"

type Config struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	RemoteBaseURL        string  `yaml:"remote_base_url"`
	RemoteTimeoutSeconds int     `yaml:"remote_timeout_seconds"`
	RemoteRateLimitRPS   float64 `yaml:"remote_rate_limit_rps"`
	RemoteRateLimitBurst int     `yaml:"remote_rate_limit_burst"`
	RetryMaxAttempts     int     `yaml:"retry_max_attempts"`
	BreakerEnabled       bool    `yaml:"breaker_enabled"`

	APIRateLimitRPS   float64 `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst int     `yaml:"api_rate_limit_burst"`
	MaxUploadMB       int     `yaml:"max_upload_mb"`

	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	OpenVideoInBrowser bool `yaml:"open_video_in_browser"`

	// Source is the YAML file that was applied, empty when none was found.
	Source string `yaml:"-"`
}

func Defaults() Config {
	return Config{
		APIPort:  "8080",
		LogLevel: "info",

		RemoteBaseURL:        "http://127.0.0.1:5001",
		RemoteTimeoutSeconds: 120,
		RemoteRateLimitBurst: 1,
		RetryMaxAttempts:     3,
		BreakerEnabled:       true,

		APIRateLimitBurst: 1,
		MaxUploadMB:       200,

		NATSSubject: "questions.events",
	}
}

// Load layers defaults, then the YAML file named by CONFIG_PATH (default
// config.yaml, skipped when absent), then environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	path := mustEnv("CONFIG_PATH", defaultConfigPath)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Source = path
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.APIPort = mustEnv("API_PORT", cfg.APIPort)
	cfg.LogLevel = mustEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.RemoteBaseURL = mustEnv("REMOTE_BASE_URL", cfg.RemoteBaseURL)
	cfg.RemoteTimeoutSeconds = mustEnvInt("REMOTE_TIMEOUT_SECONDS", cfg.RemoteTimeoutSeconds)
	cfg.RemoteRateLimitRPS = mustEnvFloat("REMOTE_RATE_LIMIT_RPS", cfg.RemoteRateLimitRPS)
	cfg.RemoteRateLimitBurst = mustEnvInt("REMOTE_RATE_LIMIT_BURST", cfg.RemoteRateLimitBurst)
	cfg.RetryMaxAttempts = mustEnvInt("RETRY_MAX_ATTEMPTS", cfg.RetryMaxAttempts)
	cfg.BreakerEnabled = mustEnvBool("BREAKER_ENABLED", cfg.BreakerEnabled)

	cfg.APIRateLimitRPS = mustEnvFloat("API_RATE_LIMIT_RPS", cfg.APIRateLimitRPS)
	cfg.APIRateLimitBurst = mustEnvInt("API_RATE_LIMIT_BURST", cfg.APIRateLimitBurst)
	cfg.MaxUploadMB = mustEnvInt("MAX_UPLOAD_MB", cfg.MaxUploadMB)

	cfg.NATSURL = mustEnv("NATS_URL", cfg.NATSURL)
	cfg.NATSSubject = mustEnv("NATS_SUBJECT", cfg.NATSSubject)

	cfg.OpenVideoInBrowser = mustEnvBool("OPEN_VIDEO_IN_BROWSER", cfg.OpenVideoInBrowser)

	return cfg, nil
}

func (c Config) RemoteTimeout() time.Duration {
	if c.RemoteTimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.RemoteTimeoutSeconds) * time.Second
}

func (c Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 200 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
