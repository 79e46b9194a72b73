package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/metrics"
	"github.com/tasktrack/tasktrack/internal/store/sqlite"
)

// Processor delivers a single notification and records the outcome on it:
// delivered, back to pending for a retry, or failed. ErrNotClaimed means
// another dispatcher owns it.
type Processor interface {
	Process(ctx context.Context, n *domain.Notification) error
}

// SweepResult summarises one sweep.
type SweepResult struct {
	Picked    int `json:"picked"`
	Delivered int `json:"delivered"`
	Retried   int `json:"retried"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Sweeper periodically retries pending notifications.
type Sweeper struct {
	db      sqlx.ExtContext
	proc    Processor
	cfg     config.SweeperConfig
	metrics *metrics.Metrics
	log     logrus.FieldLogger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	stopped chan struct{}
}

// NewSweeper creates a Sweeper. Zero config values take the defaults.
func NewSweeper(db sqlx.ExtContext, proc Processor, cfg config.SweeperConfig, m *metrics.Metrics, log logrus.FieldLogger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = config.DefaultSweepInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultSweepBatchSize
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = config.DefaultSweepStaleAfter
	}
	return &Sweeper{db: db, proc: proc, cfg: cfg, metrics: m, log: log}
}

// RunOnce processes one batch of due notifications: pending ones, and sent
// ones abandoned for longer than StaleAfter by a dispatch that never
// finished.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	repo := sqlite.NewNotificationRepository(s.db)

	due, err := repo.ListPending(ctx, s.cfg.BatchSize, time.Now().UTC().Add(-s.cfg.StaleAfter))
	if err != nil {
		return result, err
	}
	result.Picked = len(due)

	for _, n := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := s.proc.Process(ctx, n)
		switch {
		case err == nil:
			result.Delivered++
		case errors.Is(err, ErrNotClaimed):
			result.Skipped++
		case n.Status == domain.NotificationFailed:
			result.Failed++
		default:
			result.Retried++
		}
	}
	return result, nil
}

// Run sweeps immediately and then every Interval until ctx is cancelled or
// Stop is called. It returns nil once stopped.
func (s *Sweeper) Run(ctx context.Context) error {
	done, stopped, err := s.begin()
	if err != nil {
		return err
	}
	s.runLoop(ctx, done, stopped)
	return nil
}

// Start is Run in a background goroutine.
func (s *Sweeper) Start(ctx context.Context) error {
	done, stopped, err := s.begin()
	if err != nil {
		return err
	}
	go s.runLoop(ctx, done, stopped)
	return nil
}

func (s *Sweeper) begin() (done, stopped chan struct{}, err error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, nil, errors.New("sweeper is already running")
	}
	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	done, stopped = s.done, s.stopped
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"interval":    s.cfg.Interval.String(),
		"batch_size":  s.cfg.BatchSize,
		"stale_after": s.cfg.StaleAfter.String(),
	}).Info("notification sweeper starting")
	return done, stopped, nil
}

// Stop signals the loop to exit and waits for the current sweep to finish.
// It is safe to call more than once.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped
}

func (s *Sweeper) runLoop(ctx context.Context, done, stopped chan struct{}) {
	defer func() {
		s.mu.Lock()
		if s.stopped == stopped {
			s.running = false
		}
		s.mu.Unlock()
		close(stopped)
		s.log.Info("notification sweeper stopped")
	}()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.RunOnce(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.WithError(err).Error("notification sweep failed")
		}
		return
	}
	if result.Picked > 0 {
		s.log.WithFields(logrus.Fields{
			"picked":    result.Picked,
			"delivered": result.Delivered,
			"retried":   result.Retried,
			"failed":    result.Failed,
			"skipped":   result.Skipped,
		}).Info("notification sweep finished")
	}
}
