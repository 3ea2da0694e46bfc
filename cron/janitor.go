package cron

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionPruner forgets idle in-memory sessions and expired summaries.
type SessionPruner interface {
	PruneIdle(maxIdle time.Duration) int
}

// Janitor evicts idle sessions on a fixed interval inside the process. It runs
// regardless of whether the queue-backed draft purge is enabled.
type Janitor struct {
	Sessions SessionPruner
	IdleTTL  time.Duration
	Interval time.Duration
	Logger   *zap.Logger
}

// Start runs the janitor until ctx is done. The returned channel closes once the loop exits.
func (j *Janitor) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	logger := j.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := j.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if evicted := j.Sessions.PruneIdle(j.IdleTTL); evicted > 0 {
					logger.Debug("Evicted idle sessions", zap.Int("evicted", evicted))
				}
			}
		}
	}()
	return done
}
