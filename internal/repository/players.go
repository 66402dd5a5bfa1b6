package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"dodgetracker/internal/constants"
	"dodgetracker/internal/domain"
)

const upsertPlayerSQL = `
INSERT INTO apex_tier_players (summoner_id, region, summoner_name, rank_tier, current_lp, wins, losses)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (summoner_id, region) DO UPDATE SET
    summoner_name = EXCLUDED.summoner_name,
    rank_tier = EXCLUDED.rank_tier,
    current_lp = EXCLUDED.current_lp,
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    updated_at = now()`

type PlayerRepository struct {
	logger zerolog.Logger
}

func NewPlayerRepository(logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{logger: logger}
}

// GetByRegion loads the persisted snapshot of one region, keyed by summoner
// id. Must run on the cycle transaction so the diff sees a consistent state.
func (r *PlayerRepository) GetByRegion(ctx context.Context, tx pgx.Tx, region string) (map[string]domain.Player, error) {
	rows, err := tx.Query(ctx, `
		SELECT summoner_id, region, summoner_name, rank_tier, current_lp, wins, losses, created_at, updated_at
		FROM apex_tier_players
		WHERE region = $1`, region)
	if err != nil {
		return nil, fmt.Errorf("failed to query apex tier players: %w", err)
	}
	defer rows.Close()

	players := make(map[string]domain.Player)
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(
			&p.SummonerID, &p.Region, &p.SummonerName, &p.RankTier,
			&p.CurrentLP, &p.Wins, &p.Losses, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan apex tier player: %w", err)
		}
		players[p.SummonerID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read apex tier players: %w", err)
	}

	r.logger.Debug().Str("region", region).Int("count", len(players)).Msg("loaded snapshot from db")
	return players, nil
}

// UpsertBatch writes the fresh snapshot, chunked to bound statement size.
func (r *PlayerRepository) UpsertBatch(ctx context.Context, tx pgx.Tx, players []domain.Player) error {
	if len(players) == 0 {
		r.logger.Debug().Msg("no players to upsert, skipping")
		return nil
	}

	for _, batch := range chunk(players, constants.InsertChunkSize) {
		rows := make([][]any, 0, len(batch))
		for _, p := range batch {
			rows = append(rows, []any{
				p.SummonerID, p.Region, p.SummonerName, p.RankTier,
				p.CurrentLP, p.Wins, p.Losses,
			})
		}
		if err := execBatch(ctx, tx, upsertPlayerSQL, rows); err != nil {
			return fmt.Errorf("failed to upsert players: %w", err)
		}
		r.logger.Info().Int("count", len(batch)).Msg("upserted player batch")
	}

	return nil
}
