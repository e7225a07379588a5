package service

import (
	"context"
	"time"

	"github.com/peerdex/peerdex/internal/logger"
)

// Reaper timing. A peer that misses four consecutive heartbeats at the
// default 30s cadence is gone.
const (
	ReapInterval  = time.Minute
	IdleThreshold = 2 * time.Minute
)

// RunReaper sweeps the session table every ReapInterval, evicting sessions
// idle longer than IdleThreshold. A sweep failure never terminates the
// loop. Blocks until ctx is cancelled; run it in its own goroutine.
func (s *Service) RunReaper(ctx context.Context) {
	logger.Info("session reaper started")
	ticker := time.NewTicker(ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("session reaper stopped")
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep performs one eviction pass.
func (s *Service) sweep(now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session reaper recovered", logger.KeyError, r)
		}
	}()

	evicted := s.table.SweepIdle(now, IdleThreshold)
	for _, sess := range evicted {
		logger.Info("evicted idle session",
			logger.KeyUser, sess.Name,
			logger.KeyClientIP, sess.IP,
			logger.KeyClientPort, sess.Port)
	}

	if s.metrics != nil {
		if len(evicted) > 0 {
			s.metrics.RecordEvictions(len(evicted))
		}
		s.metrics.SetLiveSessions(s.table.Len())
	}
}
