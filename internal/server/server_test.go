package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/log"
	"github.com/tasktrack/tasktrack/internal/server"
)

func newApp(t *testing.T) *server.App {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "server.db")
	cfg.Cache.Driver = config.CacheMemory
	cfg.Auth.JWTSecret = "server-test"
	cfg.Sweeper.Interval = 20 * time.Millisecond

	app, err := server.Build(context.Background(), cfg, log.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestServer_RunAndShutdown(t *testing.T) {
	app := newApp(t)
	srv := server.New("localhost:0", app.Router(), app.Sweeper, log.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(ctx)
	}()

	select {
	case <-srv.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServer_RejectsSecondRun(t *testing.T) {
	app := newApp(t)
	srv := server.New("localhost:0", app.Router(), nil, log.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)
	<-srv.Ready()

	assert.Error(t, srv.Run(ctx))
}

func TestServer_ListenError(t *testing.T) {
	app := newApp(t)
	srv := server.New("256.0.0.1:bad", app.Router(), nil, log.Discard())

	assert.Error(t, srv.Run(context.Background()))
	assert.Empty(t, srv.Addr())
}

func TestBuild_BadgerCache(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Database.Path = filepath.Join(dir, "server.db")
	cfg.Cache.Path = filepath.Join(dir, "cache")

	app, err := server.Build(context.Background(), cfg, log.Discard())
	require.NoError(t, err)
	require.NoError(t, app.Cache.Set(context.Background(), "k", []byte("v"), time.Minute))
	got, err := app.Cache.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.NoError(t, app.Close())
}

func TestServer_SweeperFailureStopsServer(t *testing.T) {
	app := newApp(t)
	require.NoError(t, app.Sweeper.Start(context.Background()))
	t.Cleanup(app.Sweeper.Stop)

	srv := server.New("localhost:0", app.Router(), app.Sweeper, log.Discard())
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(context.Background())
	}()

	select {
	case err := <-errChan:
		assert.ErrorContains(t, err, "already running")
	case <-time.After(5 * time.Second):
		t.Fatal("server kept running after the sweeper failed")
	}
}
