package notify

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/cache"
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/metrics"
	"github.com/tasktrack/tasktrack/internal/store/sqlite"
)

// PreferenceTTL is how long resolved preferences stay cached.
const PreferenceTTL = time.Hour

// PreferenceResolver finds the effective preferences of a user: the
// project-specific row, then the global row, then DefaultPreferences.
// Results are cached; cache failures are logged and otherwise ignored.
type PreferenceResolver struct {
	db      sqlx.ExtContext
	cache   cache.Cache
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// NewPreferenceResolver creates a resolver. c and m may be nil.
func NewPreferenceResolver(db sqlx.ExtContext, c cache.Cache, m *metrics.Metrics, log logrus.FieldLogger) *PreferenceResolver {
	return &PreferenceResolver{db: db, cache: c, metrics: m, log: log}
}

// Resolve returns the effective preferences of userID in projectID.
func (r *PreferenceResolver) Resolve(ctx context.Context, userID string, projectID *string) (domain.Preferences, error) {
	key := cache.EffectivePreferencesKey(userID, projectID)
	if r.cache != nil {
		var cached domain.Preferences
		hit, err := cache.GetJSON(ctx, r.cache, key, &cached)
		switch {
		case err != nil:
			r.metrics.CacheLookup("error")
			r.log.WithError(err).WithField("key", key).Warn("preference cache read failed")
		case hit:
			r.metrics.CacheLookup("hit")
			return cached, nil
		default:
			r.metrics.CacheLookup("miss")
		}
	}

	prefs, err := r.lookup(ctx, userID, projectID)
	if err != nil {
		return domain.Preferences{}, err
	}

	if r.cache != nil {
		if err := cache.SetJSON(ctx, r.cache, key, prefs, PreferenceTTL); err != nil {
			r.log.WithError(err).WithField("key", key).Warn("preference cache write failed")
		}
	}
	return prefs, nil
}

func (r *PreferenceResolver) lookup(ctx context.Context, userID string, projectID *string) (domain.Preferences, error) {
	repo := sqlite.NewPreferenceRepository(r.db)

	scopes := []*string{nil}
	if projectID != nil && *projectID != "" {
		scopes = []*string{projectID, nil}
	}
	for _, scope := range scopes {
		pref, err := repo.Get(ctx, userID, scope)
		if errors.Is(err, sqlite.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.Preferences{}, err
		}
		return pref.Settings, nil
	}
	return domain.DefaultPreferences(), nil
}

// Invalidate drops the cached effective preferences of userID in projectID.
// A global change (nil projectID) also drops them in every project, since
// any project without its own row falls back to the global one.
func (r *PreferenceResolver) Invalidate(ctx context.Context, userID string, projectID *string) {
	if r.cache == nil {
		return
	}
	keys := []string{cache.EffectivePreferencesKey(userID, projectID)}
	if projectID == nil || *projectID == "" {
		projects, err := sqlite.NewBoardRepository(r.db).ProjectIDs(ctx)
		if err != nil {
			r.log.WithError(err).WithField("user_id", userID).Warn("failed to list projects for preference invalidation")
		}
		for i := range projects {
			keys = append(keys, cache.EffectivePreferencesKey(userID, &projects[i]))
		}
	}
	for _, key := range keys {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.log.WithError(err).WithField("key", key).Warn("preference cache delete failed")
		}
	}
}
