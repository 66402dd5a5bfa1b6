package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"dodgetracker/internal/constants"
	"dodgetracker/internal/domain"
)

const (
	insertPromotionSQL = `
INSERT INTO promotions (summoner_id, region, at_wins, at_losses)
VALUES ($1, $2, $3, $4)`

	insertDemotionSQL = `
INSERT INTO demotions (summoner_id, region, at_wins, at_losses)
VALUES ($1, $2, $3, $4)`

	insertDodgeSQL = `
INSERT INTO dodges (summoner_id, region, rank_tier, lp_before, lp_after, at_wins, at_losses)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertPlayerCountSQL = `
INSERT INTO player_counts (region, rank_tier, player_count)
VALUES ($1, $2, $3)`
)

// EventRepository owns the append-only promotion/demotion/dodge/count logs.
// All writes run on the cycle transaction passed in by the reconciler.
type EventRepository struct {
	logger zerolog.Logger
}

func NewEventRepository(logger zerolog.Logger) *EventRepository {
	return &EventRepository{logger: logger}
}

// DemotionTimes loads the full demotion history of a region, keyed by
// summoner id. The reconciler compares these against last-presence times to
// avoid re-logging demotions.
func (r *EventRepository) DemotionTimes(ctx context.Context, tx pgx.Tx, region string) (map[string][]time.Time, error) {
	start := time.Now()

	rows, err := tx.Query(ctx, `SELECT summoner_id, created_at FROM demotions WHERE region = $1`, region)
	if err != nil {
		return nil, fmt.Errorf("failed to query demotions: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]time.Time)
	for rows.Next() {
		var summonerID string
		var createdAt time.Time
		if err := rows.Scan(&summonerID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan demotion: %w", err)
		}
		result[summonerID] = append(result[summonerID], createdAt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read demotions: %w", err)
	}

	r.logger.Debug().
		Str("region", region).
		Int("summoners", len(result)).
		Dur("duration", time.Since(start)).
		Msg("loaded demotion history")

	return result, nil
}

func (r *EventRepository) InsertPromotions(ctx context.Context, tx pgx.Tx, promotions []domain.Promotion) error {
	rows := make([][]any, 0, len(promotions))
	for _, p := range promotions {
		rows = append(rows, []any{p.SummonerID, p.Region, p.AtWins, p.AtLosses})
	}
	return r.insertRows(ctx, tx, "promotions", insertPromotionSQL, rows)
}

func (r *EventRepository) InsertDemotions(ctx context.Context, tx pgx.Tx, demotions []domain.Demotion) error {
	rows := make([][]any, 0, len(demotions))
	for _, d := range demotions {
		rows = append(rows, []any{d.SummonerID, d.Region, d.AtWins, d.AtLosses})
	}
	return r.insertRows(ctx, tx, "demotions", insertDemotionSQL, rows)
}

func (r *EventRepository) InsertDodges(ctx context.Context, tx pgx.Tx, dodges []domain.Dodge) error {
	rows := make([][]any, 0, len(dodges))
	for _, d := range dodges {
		rows = append(rows, []any{
			d.SummonerID, d.Region, d.RankTier, d.LPBefore, d.LPAfter, d.AtWins, d.AtLosses,
		})
	}
	return r.insertRows(ctx, tx, "dodges", insertDodgeSQL, rows)
}

// LatestPlayerCountTime returns when a region's tier counts were last
// recorded; found is false when the region has no count rows yet.
func (r *EventRepository) LatestPlayerCountTime(ctx context.Context, tx pgx.Tx, region string) (at time.Time, found bool, err error) {
	err = tx.QueryRow(ctx, `
		SELECT at_time FROM player_counts
		WHERE region = $1
		ORDER BY id DESC
		LIMIT 1`, region).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query player counts: %w", err)
	}
	return at, true, nil
}

func (r *EventRepository) InsertPlayerCounts(ctx context.Context, tx pgx.Tx, counts []domain.PlayerCount) error {
	rows := make([][]any, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []any{c.Region, c.RankTier, c.PlayerCount})
	}
	return r.insertRows(ctx, tx, "player_counts", insertPlayerCountSQL, rows)
}

func (r *EventRepository) insertRows(ctx context.Context, tx pgx.Tx, label, sql string, rows [][]any) error {
	if len(rows) == 0 {
		r.logger.Debug().Str("table", label).Msg("nothing to insert, skipping")
		return nil
	}

	for _, batch := range chunk(rows, constants.InsertChunkSize) {
		if err := execBatch(ctx, tx, sql, batch); err != nil {
			return fmt.Errorf("failed to insert %s: %w", label, err)
		}
		r.logger.Info().Str("table", label).Int("count", len(batch)).Msg("inserted batch")
	}

	return nil
}
