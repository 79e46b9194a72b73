package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestParseFile_FullConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, `
[server]
host = "0.0.0.0"
port = 8080

[database]
path = "data/deps.db"

[cache]
driver = "redis"
redis_addr = "cache:6379"
ttl = "30m"

[auth]
jwt_secret = "s3cret"

[smtp]
host = "smtp.example.com"
port = 2525
username = "mailer"
from = "deps <deps@example.com>"

[sweeper]
interval = "30s"
batch_size = 10
max_retries = 5
stale_after = "15m"

[log]
level = "debug"
format = "json"

[app]
frontend_url = "https://tracker.example.com"
`)

	cfg, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, filepath.Join(dir, "data/deps.db"), cfg.Database.Path)
	assert.Equal(t, CacheRedis, cfg.Cache.Driver)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, 30*time.Second, cfg.Sweeper.Interval)
	assert.Equal(t, 10, cfg.Sweeper.BatchSize)
	assert.Equal(t, 5, cfg.Sweeper.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.Sweeper.StaleAfter)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://tracker.example.com", cfg.App.FrontendURL)
	assert.Equal(t, path, cfg.Path)
}

func TestParseFile_DefaultsForMissingSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, "[server]\nport = 9000\n")

	cfg, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DefaultCacheDriver, cfg.Cache.Driver)
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
	assert.Equal(t, DefaultSweepInterval, cfg.Sweeper.Interval)
	assert.Equal(t, DefaultSweepBatchSize, cfg.Sweeper.BatchSize)
	assert.Equal(t, DefaultSweepMaxRetries, cfg.Sweeper.MaxRetries)
	assert.Equal(t, DefaultSweepStaleAfter, cfg.Sweeper.StaleAfter)
}

func TestParseFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"bad toml", "this is not valid toml {{{", "failed to parse TOML"},
		{"port zero", "[server]\nport = 0\n", "invalid port"},
		{"port too large", "[server]\nport = 70000\n", "invalid port"},
		{"unknown cache driver", "[cache]\ndriver = \"memcached\"\n", "invalid cache driver"},
		{"zero batch", "[sweeper]\nbatch_size = 0\n", "batch_size"},
		{"negative stale window", "[sweeper]\nstale_after = \"-1m\"\n", "stale_after"},
		{"bad log format", "[log]\nformat = \"xml\"\n", "log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			writeFile(t, path, tt.content)

			_, err := ParseFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestDiscovery_ParentDirectory(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(child, 0755))
	writeFile(t, filepath.Join(root, ConfigFileName), "")

	path, err := discoverConfigPathFrom(child)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFileName), path)
}

func TestDiscovery_NotFound(t *testing.T) {
	_, err := discoverConfigPathFrom(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}
