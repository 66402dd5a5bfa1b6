package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"dodgetracker/internal/constants"
	"dodgetracker/internal/domain"
	"dodgetracker/internal/fetcher"
	"dodgetracker/internal/repository"
	"dodgetracker/internal/riot"
)

// Enricher resolves identity metadata for detected dodges. It runs in its own
// transactions; its failure degrades metadata only and never aborts a cycle.
type Enricher interface {
	EnrichDodges(ctx context.Context, region riot.Region, dodges []domain.Dodge) error
}

// Reconciler runs the periodic snapshot cycle: scatter/gather fetch, diff
// against the stored snapshot, and one transaction committing the new
// snapshot together with all derived events.
type Reconciler struct {
	fetcher  *fetcher.Fetcher
	pool     *pgxpool.Pool
	players  *repository.PlayerRepository
	events   *repository.EventRepository
	enricher Enricher
	logger   zerolog.Logger
}

func New(
	f *fetcher.Fetcher,
	pool *pgxpool.Pool,
	players *repository.PlayerRepository,
	events *repository.EventRepository,
	enricher Enricher,
	logger zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		fetcher:  f,
		pool:     pool,
		players:  players,
		events:   events,
		enricher: enricher,
		logger:   logger,
	}
}

// RunCycle executes one reconciliation cycle. Either the whole snapshot and
// its event rows commit together or the cycle is abandoned and retried on the
// next tick.
func (r *Reconciler) RunCycle(ctx context.Context) error {
	start := time.Now()
	r.logger.Info().Msg("starting reconciliation cycle")

	results := r.fetcher.FetchAll(ctx)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin cycle transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, res := range results {
		if res.Err != nil {
			// No data for this region: excluded from demotion detection so an
			// empty snapshot never reads as everyone demoting.
			r.logger.Warn().
				Err(res.Err).
				Str("region", string(res.Region)).
				Msg("region errored, skipping this cycle")
			continue
		}
		if err := r.reconcileRegion(ctx, tx, res); err != nil {
			return fmt.Errorf("region %s: %w", res.Region, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cycle transaction: %w", err)
	}

	r.logger.Info().Dur("duration", time.Since(start)).Msg("reconciliation cycle committed")
	return nil
}

func (r *Reconciler) reconcileRegion(ctx context.Context, tx pgx.Tx, res fetcher.RegionResult) error {
	region := string(res.Region)

	old, err := r.players.GetByRegion(ctx, tx, region)
	if err != nil {
		return err
	}

	fresh := make(map[string]fetcher.Entry, len(res.Entries))
	for _, entry := range res.Entries {
		fresh[entry.SummonerID] = entry
	}

	demotionTimes, err := r.events.DemotionTimes(ctx, tx, region)
	if err != nil {
		return err
	}

	dodges := FindDodges(old, fresh)
	promotions := FindPromotions(fresh, old, demotionTimes)
	demotions := FindDemotions(old, fresh, demotionTimes)

	r.logger.Info().
		Str("region", region).
		Int("dodges", len(dodges)).
		Int("promotions", len(promotions)).
		Int("demotions", len(demotions)).
		Msg("computed snapshot diff")

	// Enrich before the dodge rows land so identity metadata is already
	// queryable when the insert notification fires.
	if len(dodges) > 0 {
		if err := r.enricher.EnrichDodges(ctx, res.Region, dodges); err != nil {
			r.logger.Error().
				Err(err).
				Str("region", region).
				Msg("enrichment failed, dodge metadata degraded")
		}
	}

	if err := r.players.UpsertBatch(ctx, tx, entriesToPlayers(res.Entries)); err != nil {
		return err
	}
	if err := r.events.InsertPromotions(ctx, tx, promotions); err != nil {
		return err
	}
	if err := r.events.InsertDemotions(ctx, tx, demotions); err != nil {
		return err
	}
	if err := r.events.InsertDodges(ctx, tx, dodges); err != nil {
		return err
	}

	return r.recordPlayerCounts(ctx, tx, res)
}

func (r *Reconciler) recordPlayerCounts(ctx context.Context, tx pgx.Tx, res fetcher.RegionResult) error {
	region := string(res.Region)

	lastAt, found, err := r.events.LatestPlayerCountTime(ctx, tx, region)
	if err != nil {
		return err
	}
	if found && time.Since(lastAt) < constants.PlayerCountMinInterval {
		r.logger.Debug().Str("region", region).Time("last_at", lastAt).Msg("player counts up to date, skipping")
		return nil
	}

	counts := []domain.PlayerCount{
		{Region: region, RankTier: domain.TierMaster, PlayerCount: res.Counts.Master},
		{Region: region, RankTier: domain.TierGrandmaster, PlayerCount: res.Counts.Grandmaster},
		{Region: region, RankTier: domain.TierChallenger, PlayerCount: res.Counts.Challenger},
	}
	return r.events.InsertPlayerCounts(ctx, tx, counts)
}

func entriesToPlayers(entries []fetcher.Entry) []domain.Player {
	players := make([]domain.Player, 0, len(entries))
	for _, e := range entries {
		players = append(players, domain.Player{
			SummonerID:   e.SummonerID,
			SummonerName: e.SummonerName,
			Region:       e.Region,
			RankTier:     e.RankTier,
			CurrentLP:    e.LeaguePoints,
			Wins:         e.Wins,
			Losses:       e.Losses,
		})
	}
	return players
}
