// Package sweeper periodically removes expired sessions from the SQL stores.
// Expired sessions never resolve; sweeping only reclaims their rows.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often expired sessions are deleted.
const DefaultInterval = time.Hour

// Store deletes sessions whose expiry is at or before now.
type Store interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper runs DeleteExpiredSessions on a fixed interval.
type Sweeper struct {
	store    Store
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// New creates a Sweeper. A non-positive interval falls back to DefaultInterval.
func New(store Store, logger *slog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		store:    store,
		logger:   logger.With("component", "session.sweeper"),
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps once immediately and then on every tick. Blocks until ctx is
// cancelled or Shutdown is called.
func (s *Sweeper) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("sweeper already started")
	}
	s.started = true
	s.done = make(chan struct{})
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	defer close(s.done)

	s.logger.Info("session sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.SweepOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// SweepOnce deletes expired sessions and returns how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) int64 {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now().UTC())
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("failed to delete expired sessions", "error", err)
		}
		return 0
	}
	if n > 0 {
		s.logger.Info("expired sessions deleted", "count", n)
	}
	return n
}

// Shutdown stops the sweeper and waits for the current pass to finish.
// It implements server.ShutdownFunc for integration with graceful shutdown.
func (s *Sweeper) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn("session sweeper shutdown timed out")
		return ctx.Err()
	}
}
