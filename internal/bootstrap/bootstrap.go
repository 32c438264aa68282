package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	httpadapter "github.com/kirillkom/question-paper-analyzer/internal/adapters/http"
	"github.com/kirillkom/question-paper-analyzer/internal/config"
	"github.com/kirillkom/question-paper-analyzer/internal/core/ports"
	"github.com/kirillkom/question-paper-analyzer/internal/core/usecase"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/events/nats"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/notify"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/remote/questionapi"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/render/markdown"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/resilience"
	"github.com/kirillkom/question-paper-analyzer/internal/observability/metrics"
)

// Surface selects how notices and video links reach the user.
type Surface struct {
	Notifier ports.Notifier
	Opener   ports.LinkOpener
}

type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Client   *questionapi.Client
	Analyzer *usecase.Analyzer
	Inbox    *notify.Inbox

	closeFn func()
}

// New wires the analyzer for the presentation API. Notices and links are
// buffered in the inbox for the front end; video links are also opened in
// the local browser when enabled.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	inbox := notify.NewInbox(0)
	surface := Surface{
		Notifier: notify.Notifiers(inbox, notify.NewLogNotifier(logger)),
		Opener:   inbox,
	}
	if cfg.OpenVideoInBrowser {
		surface.Opener = notify.Openers(inbox, notify.NewBrowserOpener(logger))
	}

	app, err := NewWithSurface(cfg, logger, "api", surface)
	if err != nil {
		return nil, err
	}
	app.Inbox = inbox
	return app, nil
}

// NewWithSurface wires the analyzer against the given notice surface.
func NewWithSurface(cfg config.Config, logger *slog.Logger, service string, surface Surface) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := metrics.New(service)

	remoteExecutor, eventsExecutor := newExecutors(cfg, logger)
	client := questionapi.New(cfg.RemoteBaseURL, cfg.RemoteTimeout(),
		questionapi.WithExecutor(remoteExecutor),
		questionapi.WithObserver(m.Remote),
		questionapi.WithLogger(logger),
	)

	deps := usecase.Collaborators{
		Service:  client,
		Opener:   surface.Opener,
		Notifier: surface.Notifier,
		Observer: m.Interaction,
		Logger:   logger,
	}

	var closers []func()
	if cfg.NATSURL != "" {
		publisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ConnectTimeout:     5 * time.Second,
			ReconnectWait:      2 * time.Second,
			MaxReconnects:      60,
			ResilienceExecutor: eventsExecutor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		deps.Events = publisher
		closers = append(closers, publisher.Close)
	}

	analyzer := usecase.NewAnalyzer(deps)
	closers = append([]func(){analyzer.Close}, closers...)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Client:   client,
		Analyzer: analyzer,
		closeFn: func() {
			for _, fn := range closers {
				fn()
			}
		},
	}, nil
}

// Router builds the presentation API on top of the wired analyzer.
func (a *App) Router() *httpadapter.Router {
	deps := httpadapter.Dependencies{
		Renderer: markdown.New(),
		Exporter: xlsx.NewExporter(),
		Metrics:  a.Metrics,
		Logger:   a.Logger,
	}
	if a.Inbox != nil {
		deps.Inbox = a.Inbox
	}
	return httpadapter.NewRouter(a.Config, a.Analyzer, deps)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// newExecutors keeps the remote rate budget for calls to the question
// service only; event publishes never wait for its tokens.
func newExecutors(cfg config.Config, logger *slog.Logger) (remote, events *resilience.Executor) {
	remote = resilience.NewExecutor(resilienceConfig(cfg), resilience.WithLogger(logger))

	eventsCfg := resilienceConfig(cfg)
	eventsCfg.RateLimitRPS = 0
	events = resilience.NewExecutor(eventsCfg, resilience.WithLogger(logger))
	return remote, events
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	if cfg.RetryMaxAttempts > 0 {
		out.RetryMaxAttempts = cfg.RetryMaxAttempts
	}
	out.BreakerEnabled = cfg.BreakerEnabled
	out.RateLimitRPS = cfg.RemoteRateLimitRPS
	if cfg.RemoteRateLimitBurst > 0 {
		out.RateLimitBurst = cfg.RemoteRateLimitBurst
	}
	return out
}
