package orchestrator

import (
	"context"
	"errors"
	"time"

	"plandrift/pkg/logging"
)

// Runner is a single pass over all targets
type Runner interface {
	Run(ctx context.Context) (bool, bool, error)
}

// Scheduler re-runs scans on a fixed interval.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   logging.Logger
}

// NewScheduler creates a scheduler for runner.
func NewScheduler(runner Runner, interval time.Duration, logger logging.Logger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Start runs a scan immediately and then once per interval until ctx ends.
// A failed pass is logged and does not stop the schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scan interval must be positive")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.runOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	anyDrift, anyError, err := s.runner.Run(ctx)
	switch {
	case err != nil:
		s.logger.Error("Scheduled scan failed: %v", err)
	case anyError:
		s.logger.Warn("Scheduled scan finished with errors (drift=%t)", anyDrift)
	default:
		s.logger.Info("Scheduled scan finished (drift=%t)", anyDrift)
	}
}
