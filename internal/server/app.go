package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/api"
	"github.com/tasktrack/tasktrack/internal/cache"
	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/metrics"
	"github.com/tasktrack/tasktrack/internal/notify"
	"github.com/tasktrack/tasktrack/internal/realtime"
	"github.com/tasktrack/tasktrack/internal/service"
	"github.com/tasktrack/tasktrack/internal/store"
)

// App is the assembled service: storage, cache, notification pipeline and
// HTTP router.
type App struct {
	Config  *config.Config
	Store   *store.Manager
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Hub     *realtime.Hub
	Deps    service.Deps
	Sweeper *notify.Sweeper
}

// Build opens the database and cache and wires every component from cfg.
func Build(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	manager, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		manager.Close()
		return nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Driver, err)
	}

	m := metrics.New()
	hub := realtime.NewHub(log.WithField("component", "realtime"))
	prefs := notify.NewPreferenceResolver(manager.DB(), c, m, log.WithField("component", "preferences"))
	dispatcher := notify.NewDispatcher(manager.DB(), notify.DispatcherConfig{
		Mailer:      notify.NewMailer(cfg.SMTP),
		Emitter:     hub,
		Metrics:     m,
		Log:         log.WithField("component", "dispatcher"),
		FrontendURL: cfg.App.FrontendURL,
		MaxRetries:  cfg.Sweeper.MaxRetries,
	})

	deps := service.Deps{
		Store:       manager,
		Cache:       c,
		CacheTTL:    cfg.Cache.TTL,
		Composer:    notify.NewComposer(manager.DB(), prefs, log.WithField("component", "composer")),
		Dispatcher:  dispatcher,
		Preferences: prefs,
		Emitter:     hub,
		Metrics:     m,
		Log:         log,
	}

	return &App{
		Config:  cfg,
		Store:   manager,
		Cache:   c,
		Metrics: m,
		Hub:     hub,
		Deps:    deps,
		Sweeper: notify.NewSweeper(manager.DB(), dispatcher, cfg.Sweeper, m, log.WithField("component", "sweeper")),
	}, nil
}

// Router returns the router configuration for the app.
func (a *App) Router() api.RouterConfig {
	return api.RouterConfig{
		Deps:        a.Deps,
		JWTSecret:   a.Config.Auth.JWTSecret,
		FrontendURL: a.Config.App.FrontendURL,
		Hub:         a.Hub,
	}
}

// Close releases the cache and the database.
func (a *App) Close() error {
	return errors.Join(a.Cache.Close(), a.Store.Close())
}
