package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/domain"
)

func drivers(t *testing.T) map[string]Cache {
	t.Helper()
	b, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return map[string]Cache{"badger": b, "memory": NewMemory()}
}

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrMiss)

			require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
			got, err := c.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)

			require.NoError(t, c.Set(ctx, "k2", []byte("v2"), time.Hour))
			require.NoError(t, c.Delete(ctx, "k", "k2", "never-set"))
			_, err = c.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrMiss)
			_, err = c.Get(ctx, "k2")
			assert.ErrorIs(t, err, ErrMiss)
		})
	}
}

func TestCache_JSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			in := []*domain.Dependency{{ID: "dep-1", Type: domain.StartToStart, LagTime: 2, IsActive: true}}
			require.NoError(t, SetJSON(ctx, c, "deps", in, time.Hour))

			var out []*domain.Dependency
			hit, err := GetJSON(ctx, c, "deps", &out)
			require.NoError(t, err)
			assert.True(t, hit)
			assert.Equal(t, in, out)

			hit, err = GetJSON(ctx, c, "absent", &out)
			require.NoError(t, err)
			assert.False(t, hit)
		})
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(59 * time.Second)
	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "dependencies:tsk-1", DependenciesKey("tsk-1"))
	assert.Equal(t, "dependencies:tsk-1:both", DependenciesDirectionKey("tsk-1", domain.DirectionBoth))
	assert.ElementsMatch(t, []string{
		"dependencies:tsk-1",
		"dependencies:tsk-1:predecessor",
		"dependencies:tsk-1:successor",
		"dependencies:tsk-1:both",
	}, TaskKeys("tsk-1"))

	project := "prj-9"
	assert.Equal(t, "notification:prefs:usr-1:global", PreferencesKey("usr-1", nil))
	assert.Equal(t, "notification:prefs:usr-1:prj-9", PreferencesKey("usr-1", &project))
	assert.Equal(t, "notification:prefs:effective:usr-1:global", EffectivePreferencesKey("usr-1", nil))
	assert.Equal(t, "notification:prefs:effective:usr-1:prj-9", EffectivePreferencesKey("usr-1", &project))
	assert.NotEqual(t, PreferencesKey("usr-1", &project), EffectivePreferencesKey("usr-1", &project))
}

func TestNew_Drivers(t *testing.T) {
	c, err := New(context.Background(), config.CacheConfig{Driver: config.CacheMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	c, err = New(context.Background(), config.CacheConfig{Driver: config.CacheBadger, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Badger{}, c)
	require.NoError(t, c.Close())

	_, err = New(context.Background(), config.CacheConfig{Driver: "memcached"})
	assert.Error(t, err)
}
