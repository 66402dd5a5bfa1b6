package fx

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"dodgetracker/internal/config"
	"dodgetracker/internal/database"
	"dodgetracker/internal/enrichment"
	"dodgetracker/internal/fanout"
	"dodgetracker/internal/fetcher"
	"dodgetracker/internal/logger"
	"dodgetracker/internal/lolpros"
	"dodgetracker/internal/reconciler"
	"dodgetracker/internal/repository"
	"dodgetracker/internal/riot"
	"dodgetracker/internal/scheduler"
)

func provideFetcher(client *riot.Client, log zerolog.Logger) *fetcher.Fetcher {
	return fetcher.New(client, log)
}

func provideEnrichment(client *riot.Client, profiles *lolpros.Client, store *repository.AccountRepository, log zerolog.Logger) *enrichment.Service {
	return enrichment.New(client, profiles, store, log)
}

func provideReconciler(
	f *fetcher.Fetcher,
	pool *pgxpool.Pool,
	players *repository.PlayerRepository,
	events *repository.EventRepository,
	enricher *enrichment.Service,
	log zerolog.Logger,
) *reconciler.Reconciler {
	return reconciler.New(f, pool, players, events, enricher, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// external clients
	fx.Provide(riot.NewClient),
	fx.Provide(lolpros.NewClient),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewEventRepository),
	fx.Provide(repository.NewAccountRepository),
	// reconciliation
	fx.Provide(provideFetcher),
	fx.Provide(provideEnrichment),
	fx.Provide(provideReconciler),
	fx.Provide(scheduler.New),
	// fan-out
	fx.Provide(fanout.NewHub),
	fx.Provide(fanout.NewListener),
)
