// Package server runs the HTTP API and the notification sweeper together.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tasktrack/tasktrack/internal/api"
	"github.com/tasktrack/tasktrack/internal/notify"
)

const (
	// DefaultAddress is the default address the server listens on.
	DefaultAddress = "localhost:7432"
	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// Server manages the HTTP server and sweeper lifecycle.
type Server struct {
	httpServer *http.Server
	sweeper    *notify.Sweeper
	logger     logrus.FieldLogger
	listener   net.Listener
	ready      chan struct{}
	mu         sync.Mutex
	started    bool
}

// New creates a Server. If addr is empty, DefaultAddress is used.
// A nil sweeper runs the HTTP server alone.
func New(addr string, router api.RouterConfig, sweeper *notify.Sweeper, logger logrus.FieldLogger) *Server {
	if addr == "" {
		addr = DefaultAddress
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      api.NewRouter(router),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sweeper: sweeper,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Run serves until ctx is canceled, then shuts down gracefully. The HTTP
// server and the sweeper loop are members of one errgroup, so either one
// returning an error cancels the other. Individual sweep errors are logged
// by the sweeper and do not stop the server.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = ln
	s.started = true
	s.mu.Unlock()
	close(s.ready)

	s.logger.WithField("addr", ln.Addr().String()).Info("server listening")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if s.sweeper != nil {
		g.Go(func() error {
			return s.sweeper.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	s.logger.Info("server stopped")
	return err
}

// ListenAndServe runs until SIGINT or SIGTERM.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the address the server is listening on.
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
