// Package service holds the dependency, notification and task registry
// business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/cache"
	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/metrics"
	"github.com/tasktrack/tasktrack/internal/notify"
	"github.com/tasktrack/tasktrack/internal/realtime"
	"github.com/tasktrack/tasktrack/internal/store"
	"github.com/tasktrack/tasktrack/internal/store/sqlite"
)

// Deps are the collaborators shared by every service. Cache, Emitter and
// Metrics may be nil.
type Deps struct {
	Store       *store.Manager
	Cache       cache.Cache
	CacheTTL    time.Duration
	Composer    *notify.Composer
	Dispatcher  notify.Processor
	Preferences *notify.PreferenceResolver
	Emitter     realtime.Emitter
	Metrics     *metrics.Metrics
	Log         logrus.FieldLogger
}

func (d Deps) cacheTTL() time.Duration {
	if d.CacheTTL <= 0 {
		return config.DefaultCacheTTL
	}
	return d.CacheTTL
}

func (d Deps) emit(room, event string, payload any) {
	if d.Emitter == nil {
		return
	}
	if err := d.Emitter.Emit(room, event, payload); err != nil {
		d.Log.WithError(err).WithFields(logrus.Fields{"room": room, "event": event}).Warn("realtime emit failed")
	}
}

func (d Deps) invalidate(ctx context.Context, taskIDs ...string) {
	if d.Cache == nil {
		return
	}
	var keys []string
	for _, id := range taskIDs {
		keys = append(keys, cache.TaskKeys(id)...)
	}
	if err := d.Cache.Delete(ctx, keys...); err != nil {
		d.Log.WithError(err).WithField("keys", keys).Warn("cache invalidation failed")
	}
}

// Hook is a side effect run after a transaction commits.
type Hook struct {
	Name string
	Run  func(ctx context.Context) error
}

// PostCommit is an ordered list of hooks. Each hook runs in its own error
// boundary: an error or panic is logged and counted, and the next hook runs.
type PostCommit []Hook

// Add appends a hook.
func (p *PostCommit) Add(name string, fn func(ctx context.Context) error) {
	*p = append(*p, Hook{Name: name, Run: fn})
}

// Run executes every hook with a context that outlives request cancellation.
func (p PostCommit) Run(ctx context.Context, log logrus.FieldLogger, m *metrics.Metrics) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range p {
		runHook(ctx, h, log, m)
	}
}

func runHook(ctx context.Context, h Hook, log logrus.FieldLogger, m *metrics.Metrics) {
	defer func() {
		if r := recover(); r != nil {
			m.HookFailed(h.Name)
			log.WithField("hook", h.Name).Errorf("post-commit hook panicked: %v", r)
		}
	}()
	if err := h.Run(ctx); err != nil {
		m.HookFailed(h.Name)
		log.WithError(err).WithField("hook", h.Name).Error("post-commit hook failed")
	}
}

// wrapErr passes domain errors through and hides everything else behind an
// internal error.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsDomainError(err); ok {
		return err
	}
	return domain.NewInternalError(err)
}

func getTask(ctx context.Context, repo *sqlite.TaskRepository, id string) (*domain.Task, error) {
	task, err := repo.GetByID(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, domain.NewTaskNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", id, err)
	}
	return task, nil
}
