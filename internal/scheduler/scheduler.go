// Package scheduler triggers collection runs on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/newspulse/internal/collector"
)

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = 30 * time.Minute

// Runner starts a collection run unless one is already in progress.
type Runner interface {
	TryCollect(ctx context.Context) (collector.Report, error)
}

// Scheduler fires Runner immediately and then every interval.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger
}

// New constructs a Scheduler.
func New(runner Runner, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Run blocks until ctx ends.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	report, err := s.runner.TryCollect(ctx)
	switch {
	case errors.Is(err, collector.ErrBusy):
		s.logger.Info("collection already running, skipping tick")
	case err != nil:
		s.logger.Error("scheduled collection failed", zap.Error(err))
	default:
		s.logger.Info("scheduled collection finished",
			zap.String("run_id", report.RunID),
			zap.Int("saved", report.Saved),
		)
	}
}
