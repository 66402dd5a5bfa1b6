package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	fxmodules "dodgetracker/internal/fx"
	"dodgetracker/internal/scheduler"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runTracker),
	).Run()
}

func runTracker(
	lc fx.Lifecycle,
	sched *scheduler.Scheduler,
	pool *pgxpool.Pool,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sched.Start()
			logger.Info().Msg("tracker started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down tracker")

			if err := sched.Stop(); err != nil {
				logger.Warn().Err(err).Msg("error stopping scheduler")
			}
			pool.Close()

			logger.Info().Msg("tracker stopped gracefully")
			return nil
		},
	})
}
