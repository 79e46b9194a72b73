// Package cache is the TTL key-value cache used for read-through dependency
// listings and preference lookups. Values are JSON documents.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/domain"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a string-keyed byte store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// New opens the driver selected in cfg.
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Driver {
	case config.CacheBadger:
		return OpenBadger(BadgerConfig{Path: cfg.Path})
	case config.CacheRedis:
		return NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	case config.CacheMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// GetJSON decodes the value under key into dest. It reports false on a miss.
func GetJSON(ctx context.Context, c Cache, key string, dest any) (bool, error) {
	raw, err := c.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttl)
}

// DependenciesKey is the unscoped listing key of a task.
func DependenciesKey(taskID string) string {
	return "dependencies:" + taskID
}

// DependenciesDirectionKey is the listing key of a task in one direction.
func DependenciesDirectionKey(taskID string, direction domain.Direction) string {
	return "dependencies:" + taskID + ":" + string(direction)
}

// TaskKeys returns every listing key of a task, for invalidation.
func TaskKeys(taskID string) []string {
	return []string{
		DependenciesKey(taskID),
		DependenciesDirectionKey(taskID, domain.DirectionPredecessor),
		DependenciesDirectionKey(taskID, domain.DirectionSuccessor),
		DependenciesDirectionKey(taskID, domain.DirectionBoth),
	}
}

// PreferencesKey is the key of a user's stored preferences row in a
// project, or the global row when projectID is nil.
func PreferencesKey(userID string, projectID *string) string {
	return "notification:prefs:" + userID + ":" + preferenceScope(projectID)
}

// EffectivePreferencesKey is the key of the preferences that apply to a user
// in a project once the global row and the defaults are folded in.
func EffectivePreferencesKey(userID string, projectID *string) string {
	return "notification:prefs:effective:" + userID + ":" + preferenceScope(projectID)
}

func preferenceScope(projectID *string) string {
	if projectID != nil && *projectID != "" {
		return *projectID
	}
	return "global"
}
