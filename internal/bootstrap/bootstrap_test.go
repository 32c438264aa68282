package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/question-paper-analyzer/internal/config"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/resilience"
)

func TestNewWiresAPIWithoutNATS(t *testing.T) {
	cfg := config.Defaults()
	app, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer app.Close()

	if app.Inbox == nil || app.Analyzer == nil || app.Client == nil {
		t.Fatalf("expected inbox, analyzer and client to be wired")
	}

	handler := app.Router().Handler()
	for _, path := range []string{"/healthz", "/metrics", "/v1/view", "/v1/notices"} {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		if res.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, res.Code)
		}
	}
}

func TestResilienceConfigFromAppConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.RetryMaxAttempts = 5
	cfg.BreakerEnabled = false
	cfg.RemoteRateLimitRPS = 2.5
	cfg.RemoteRateLimitBurst = 4

	got := resilienceConfig(cfg)
	def := resilience.DefaultConfig()
	if got.RetryMaxAttempts != 5 || got.BreakerEnabled || got.RateLimitRPS != 2.5 || got.RateLimitBurst != 4 {
		t.Fatalf("unexpected resilience config %+v", got)
	}
	if got.RetryInitialBackoff != def.RetryInitialBackoff || got.BreakerOpenTimeout != def.BreakerOpenTimeout {
		t.Fatalf("expected defaults for unset fields, got %+v", got)
	}
}

func TestEventPublishesDoNotSpendRemoteRateBudget(t *testing.T) {
	cfg := config.Defaults()
	cfg.RemoteRateLimitRPS = 1
	cfg.RemoteRateLimitBurst = 1
	remote, events := newExecutors(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	noop := func(context.Context) error { return nil }
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		err := events.Execute(ctx, "nats.publish", noop, nil)
		cancel()
		if err != nil {
			t.Fatalf("publish %d: expected no rate limiting, got %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	started := time.Now()
	if err := remote.Execute(ctx, "get-answer", noop, nil); err != nil {
		t.Fatalf("expected remote call to get the untouched token, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 100*time.Millisecond {
		t.Fatalf("expected remote call to be admitted immediately, waited %s", elapsed)
	}
}
