package enrichment

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dodgetracker/internal/constants"
	"dodgetracker/internal/domain"
	"dodgetracker/internal/riot"
)

// IdentityAPI is the slice of the riot client enrichment needs.
type IdentityAPI interface {
	GetSummonerByID(ctx context.Context, region riot.Region, summonerID string) (*riot.Summoner, error)
	GetAccountByPUUID(ctx context.Context, puuid string) (*riot.Account, error)
}

// ProfileAPI resolves an optional community profile slug for a riot id.
type ProfileAPI interface {
	SearchProfile(ctx context.Context, gameName, tagLine string) (slug string, ok bool, err error)
}

// AccountStore persists resolved identities.
type AccountStore interface {
	SummonerRegions(ctx context.Context) (map[string]string, error)
	UpsertSummoners(ctx context.Context, summoners []domain.Summoner) error
	UpsertRiotIDs(ctx context.Context, riotIDs []domain.RiotID) error
}

// Service resolves summoner and account identities for detected dodges. Every
// external call is timeout-bounded and isolated per item: one player's
// failure degrades only that player's record.
type Service struct {
	identity IdentityAPI
	profiles ProfileAPI
	store    AccountStore
	logger   zerolog.Logger
}

func New(identity IdentityAPI, profiles ProfileAPI, store AccountStore, logger zerolog.Logger) *Service {
	return &Service{identity: identity, profiles: profiles, store: store, logger: logger}
}

// EnrichDodges resolves and persists identity records for a region's dodges.
func (s *Service) EnrichDodges(ctx context.Context, region riot.Region, dodges []domain.Dodge) error {
	start := time.Now()

	known, err := s.store.SummonerRegions(ctx)
	if err != nil {
		return err
	}

	var toFetch []domain.Dodge
	for _, dodge := range dodges {
		if known[dodge.SummonerID] == dodge.Region {
			continue
		}
		toFetch = append(toFetch, dodge)
	}

	s.logger.Info().
		Str("region", string(region)).
		Int("dodges", len(dodges)).
		Int("to_fetch", len(toFetch)).
		Msg("enriching dodges")

	summoners := s.fetchSummoners(ctx, region, toFetch)
	if err := s.store.UpsertSummoners(ctx, summoners); err != nil {
		return err
	}

	riotIDs := s.fetchRiotIDs(ctx, region, summoners)
	if region == riot.PrimaryRegion {
		s.resolveLolprosSlugs(ctx, riotIDs)
	}
	if err := s.store.UpsertRiotIDs(ctx, riotIDs); err != nil {
		return err
	}

	s.logger.Info().
		Str("region", string(region)).
		Int("summoners", len(summoners)).
		Int("riot_ids", len(riotIDs)).
		Dur("duration", time.Since(start)).
		Msg("enrichment finished")

	return nil
}

func (s *Service) fetchSummoners(ctx context.Context, region riot.Region, dodges []domain.Dodge) []domain.Summoner {
	results := make([]*riot.Summoner, len(dodges))

	var wg sync.WaitGroup
	for i, dodge := range dodges {
		i, dodge := i, dodge
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()

			summoner, err := s.identity.GetSummonerByID(callCtx, region, dodge.SummonerID)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("region", string(region)).
					Str("summoner_id", dodge.SummonerID).
					Msg("summoner lookup failed")
				return
			}
			results[i] = summoner
		}()
	}
	wg.Wait()

	var summoners []domain.Summoner
	for _, result := range results {
		if result == nil {
			continue
		}
		summoners = append(summoners, domain.Summoner{
			Puuid:         result.Puuid,
			SummonerID:    result.ID,
			Region:        string(region),
			AccountID:     result.AccountID,
			ProfileIconID: result.ProfileIconID,
			SummonerLevel: result.SummonerLevel,
		})
	}
	return summoners
}

func (s *Service) fetchRiotIDs(ctx context.Context, region riot.Region, summoners []domain.Summoner) []domain.RiotID {
	results := make([]*riot.Account, len(summoners))

	var wg sync.WaitGroup
	for i, summoner := range summoners {
		i, summoner := i, summoner
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()

			account, err := s.identity.GetAccountByPUUID(callCtx, summoner.Puuid)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("region", string(region)).
					Str("puuid", summoner.Puuid).
					Msg("account lookup failed")
				return
			}
			results[i] = account
		}()
	}
	wg.Wait()

	var riotIDs []domain.RiotID
	for _, result := range results {
		if result == nil {
			continue
		}
		if result.GameName == "" || result.TagLine == "" {
			s.logger.Warn().Str("puuid", result.Puuid).Msg("account missing game name or tag line, skipping")
			continue
		}
		riotIDs = append(riotIDs, domain.RiotID{
			Puuid:    result.Puuid,
			GameName: result.GameName,
			TagLine:  result.TagLine,
		})
	}
	return riotIDs
}

// resolveLolprosSlugs fills in community profile slugs in place. Lookup
// failures leave the slug nil and never affect other accounts.
func (s *Service) resolveLolprosSlugs(ctx context.Context, riotIDs []domain.RiotID) {
	var wg sync.WaitGroup
	for i := range riotIDs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, constants.LolprosTimeout)
			defer cancel()

			id := riotIDs[i]
			slug, ok, err := s.profiles.SearchProfile(callCtx, id.GameName, id.TagLine)
			if err != nil {
				s.logger.Error().
					Err(err).
					Str("game_name", id.GameName).
					Str("tag_line", id.TagLine).
					Msg("lolpros lookup failed")
				return
			}
			if ok {
				riotIDs[i].LolprosSlug = &slug
			}
		}()
	}
	wg.Wait()
}
