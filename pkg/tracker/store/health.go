package store

import (
	"context"
	"time"

	"github.com/peerdex/peerdex/internal/logger"
)

// Available reports whether the store is currently accepting operations.
func (s *Store) Available() bool {
	return s.available.Load()
}

// RunHealthProbe pings the backend every interval. A failed ping marks the
// store unavailable, which makes every operation fail fast with
// models.ErrStorageUnavailable, and triggers a silent reconnect attempt on
// each subsequent tick until the backend answers again.
//
// Blocks until ctx is cancelled; run it in its own goroutine.
func (s *Store) RunHealthProbe(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *Store) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Healthcheck(pingCtx); err == nil {
		if s.available.CompareAndSwap(false, true) {
			logger.Info("catalog store reachable again")
		}
		return
	}

	if s.available.CompareAndSwap(true, false) {
		logger.Warn("catalog store unreachable, holding requests")
	}
	s.reconnect()
}

// reconnect replaces the dead connection with a fresh one. Failures are
// swallowed; the next probe tick retries.
func (s *Store) reconnect() {
	db, err := openDB(s.config)
	if err != nil {
		return
	}

	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil || sqlDB.PingContext(probeCtx) != nil {
		return
	}

	s.mu.Lock()
	old := s.db
	s.db = db
	s.mu.Unlock()

	if oldDB, err := old.DB(); err == nil {
		oldDB.Close()
	}

	s.available.Store(true)
	logger.Info("catalog store reconnected")
}
