package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"dodgetracker/internal/constants"
	"dodgetracker/internal/domain"
	"dodgetracker/internal/riot"
)

// LadderAPI is the slice of the riot client the fetcher needs.
type LadderAPI interface {
	GetLeague(ctx context.Context, region riot.Region, tier domain.RankTier) (*riot.LeagueList, error)
}

// Entry is one fetched ladder row, tagged with its region and tier.
type Entry struct {
	SummonerID   string
	SummonerName string
	Region       string
	RankTier     domain.RankTier
	LeaguePoints int
	Wins         int
	Losses       int
}

func (e Entry) GamesPlayed() int {
	return e.Wins + e.Losses
}

type TierCounts struct {
	Master      int
	Grandmaster int
	Challenger  int
}

// RegionResult is the tagged outcome of one region's fetch. Err set means the
// region contributed nothing this cycle and must be excluded from demotion
// detection.
type RegionResult struct {
	Region  riot.Region
	Entries []Entry
	Counts  TierCounts
	Err     error
}

var apexTiers = []domain.RankTier{domain.TierMaster, domain.TierGrandmaster, domain.TierChallenger}

type Fetcher struct {
	api    LadderAPI
	logger zerolog.Logger
}

func New(api LadderAPI, logger zerolog.Logger) *Fetcher {
	return &Fetcher{api: api, logger: logger}
}

// FetchRegion pulls the three apex tier ladders of one region concurrently
// and merges them. Any tier failing fails the whole region.
func (f *Fetcher) FetchRegion(ctx context.Context, region riot.Region) ([]Entry, TierCounts, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	leagues := make([]*riot.LeagueList, len(apexTiers))
	for i, tier := range apexTiers {
		i, tier := i, tier
		g.Go(func() error {
			league, err := f.api.GetLeague(ctx, region, tier)
			if err != nil {
				return err
			}
			leagues[i] = league
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, TierCounts{}, err
	}

	var entries []Entry
	for i, tier := range apexTiers {
		for _, item := range leagues[i].Entries {
			entries = append(entries, Entry{
				SummonerID:   item.SummonerID,
				SummonerName: item.SummonerName,
				Region:       string(region),
				RankTier:     tier,
				LeaguePoints: item.LeaguePoints,
				Wins:         item.Wins,
				Losses:       item.Losses,
			})
		}
	}

	counts := TierCounts{
		Master:      len(leagues[0].Entries),
		Grandmaster: len(leagues[1].Entries),
		Challenger:  len(leagues[2].Entries),
	}

	f.logger.Info().
		Str("region", string(region)).
		Int("players", len(entries)).
		Int("master", counts.Master).
		Int("grandmaster", counts.Grandmaster).
		Int("challenger", counts.Challenger).
		Dur("duration", time.Since(start)).
		Msg("fetched apex tier ladders")

	return entries, counts, nil
}

// FetchAll fans out one fetch per supported region and collects tagged
// results. A failed region never cancels or affects its siblings.
func (f *Fetcher) FetchAll(ctx context.Context) []RegionResult {
	results := make([]RegionResult, len(riot.SupportedRegions))

	var wg sync.WaitGroup
	for i, region := range riot.SupportedRegions {
		i, region := i, region
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, counts, err := f.FetchRegion(ctx, region)
			if err != nil {
				f.logger.Error().Err(err).Str("region", string(region)).Msg("region fetch failed")
				results[i] = RegionResult{Region: region, Err: err}
				return
			}
			results[i] = RegionResult{Region: region, Entries: entries, Counts: counts}
		}()
	}
	wg.Wait()

	return results
}
