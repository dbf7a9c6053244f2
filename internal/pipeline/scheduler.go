package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/river-gauge-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Runner performs one ingestion run.
type Runner interface {
	Run(ctx context.Context) (domain.RunMetadata, error)
}

// Scheduler repeats ingestion runs on a fixed interval. Runs never overlap.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	trigger  chan struct{}
}

// NewScheduler creates a Scheduler. Pass nil for clock to use wall time.
func NewScheduler(runner Runner, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		clock:    clock,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Run ingests once immediately and then on every tick or trigger until ctx
// is cancelled.
// Failed runs are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)
	s.runOnce(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return nil
			}
			s.runOnce(ctx)
		case <-s.trigger:
			s.logger.Info("manual ingestion run requested")
			s.runOnce(ctx)
		}
	}
}

// Trigger requests an extra run outside the interval. It reports false when a
// request is already pending.
func (s *Scheduler) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	meta, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("ingestion run failed", "error", err)
		return
	}
	s.logger.Info("ingestion run succeeded", "generated_at", meta.GeneratedAt)
}
