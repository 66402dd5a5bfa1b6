package scheduler

import (
	"context"
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"dodgetracker/internal/config"
	"dodgetracker/internal/reconciler"
)

// Scheduler drives the reconciliation cycle on a fixed interval. Singleton
// mode keeps a slow cycle (season reset churn) from overlapping the next one.
type Scheduler struct {
	sched  gocron.Scheduler
	logger zerolog.Logger
}

func New(cfg *config.Config, rec *reconciler.Reconciler, logger zerolog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.UpdateInterval),
		gocron.NewTask(func() {
			if err := rec.RunCycle(context.Background()); err != nil {
				// Terminal for this cycle only; the next tick retries.
				logger.Error().Err(err).Msg("reconciliation cycle failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reconciliation job: %w", err)
	}

	return &Scheduler{sched: sched, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info().Msg("reconciliation scheduler started")
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
