// Package jobs holds the background loops the API runs alongside the HTTP
// server. The only job today is the tournament status sweeper.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper is the slice of the lifecycle service the sweep loop needs.
type Sweeper interface {
	AdvanceAll(ctx context.Context) (int, error)
}

// StatusSweeper periodically advances tournament statuses based on the
// current date and capacity. The sweep itself is idempotent, so overlapping
// or redundant runs are harmless.
type StatusSweeper struct {
	svc      Sweeper
	interval time.Duration
	enabled  bool
	stopChan chan struct{}
}

func NewStatusSweeper(svc Sweeper, interval time.Duration, enabled bool) *StatusSweeper {
	if interval <= 0 {
		interval = time.Minute
	}

	return &StatusSweeper{
		svc:      svc,
		interval: interval,
		enabled:  enabled,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop. It runs one sweep immediately, then repeats on
// the configured interval until ctx is cancelled or Stop is called.
func (s *StatusSweeper) Start(ctx context.Context) {
	if !s.enabled {
		zap.L().Info("status sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	zap.L().Info("status sweeper started", zap.Duration("interval", s.interval))

	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.stopChan:
			zap.L().Info("status sweeper stopped")
			return
		case <-ctx.Done():
			zap.L().Info("status sweeper stopped", zap.Error(ctx.Err()))
			return
		}
	}
}

func (s *StatusSweeper) Stop() {
	close(s.stopChan)
}

func (s *StatusSweeper) runOnce(ctx context.Context) {
	advanced, err := s.svc.AdvanceAll(ctx)
	if err != nil {
		zap.L().Error("status sweep failed", zap.Error(err))
		return
	}

	if advanced > 0 {
		zap.L().Info("status sweep finished", zap.Int("advanced", advanced))
	}
}
