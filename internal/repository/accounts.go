package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"dodgetracker/internal/constants"
	"dodgetracker/internal/domain"
)

const (
	upsertSummonerSQL = `
INSERT INTO summoners (puuid, summoner_id, region, account_id, profile_icon_id, summoner_level)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (puuid) DO UPDATE SET
    summoner_id = EXCLUDED.summoner_id,
    region = EXCLUDED.region,
    account_id = EXCLUDED.account_id,
    profile_icon_id = EXCLUDED.profile_icon_id,
    summoner_level = EXCLUDED.summoner_level,
    updated_at = now()`

	// A nil slug keeps whatever slug is already stored.
	upsertRiotIDSQL = `
INSERT INTO riot_ids (puuid, game_name, tag_line, lolpros_slug)
VALUES ($1, $2, $3, $4)
ON CONFLICT (puuid) DO UPDATE SET
    game_name = EXCLUDED.game_name,
    tag_line = EXCLUDED.tag_line,
    lolpros_slug = COALESCE(EXCLUDED.lolpros_slug, riot_ids.lolpros_slug),
    updated_at = now()`
)

// AccountRepository owns the identity tables. Enrichment writes run in their
// own transactions, decoupled from the cycle transaction.
type AccountRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewAccountRepository(pool *pgxpool.Pool, logger zerolog.Logger) *AccountRepository {
	return &AccountRepository{pool: pool, logger: logger}
}

// SummonerRegions maps every stored summoner id to its region. Used to skip
// identity fetches for summoners already known under the same region.
func (r *AccountRepository) SummonerRegions(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT summoner_id, region FROM summoners`)
	if err != nil {
		return nil, fmt.Errorf("failed to query summoners: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var summonerID, region string
		if err := rows.Scan(&summonerID, &region); err != nil {
			return nil, fmt.Errorf("failed to scan summoner: %w", err)
		}
		result[summonerID] = region
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read summoners: %w", err)
	}
	return result, nil
}

func (r *AccountRepository) UpsertSummoners(ctx context.Context, summoners []domain.Summoner) error {
	rows := make([][]any, 0, len(summoners))
	for _, s := range summoners {
		rows = append(rows, []any{
			s.Puuid, s.SummonerID, s.Region, s.AccountID, s.ProfileIconID, s.SummonerLevel,
		})
	}
	return r.upsertRows(ctx, "summoners", upsertSummonerSQL, rows)
}

func (r *AccountRepository) UpsertRiotIDs(ctx context.Context, riotIDs []domain.RiotID) error {
	rows := make([][]any, 0, len(riotIDs))
	for _, id := range riotIDs {
		rows = append(rows, []any{id.Puuid, id.GameName, id.TagLine, id.LolprosSlug})
	}
	return r.upsertRows(ctx, "riot_ids", upsertRiotIDSQL, rows)
}

func (r *AccountRepository) upsertRows(ctx context.Context, label, sql string, rows [][]any) error {
	if len(rows) == 0 {
		r.logger.Debug().Str("table", label).Msg("nothing to upsert, skipping")
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, batch := range chunk(rows, constants.InsertChunkSize) {
		if err := execBatch(ctx, tx, sql, batch); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", label, err)
		}
		r.logger.Info().Str("table", label).Int("count", len(batch)).Msg("upserted batch")
	}

	return tx.Commit(ctx)
}
