package fetcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dodgetracker/internal/domain"
	"dodgetracker/internal/riot"
)

type stubLadder struct {
	entries    map[riot.Region]map[domain.RankTier][]riot.LeagueItem
	failRegion map[riot.Region]bool
	failTier   map[domain.RankTier]bool
}

func (s *stubLadder) GetLeague(ctx context.Context, region riot.Region, tier domain.RankTier) (*riot.LeagueList, error) {
	if s.failRegion[region] {
		return nil, fmt.Errorf("ladder unavailable for %s", region)
	}
	if s.failTier[tier] {
		return nil, fmt.Errorf("ladder unavailable for tier %s", tier)
	}
	return &riot.LeagueList{
		Tier:    string(tier),
		Entries: s.entries[region][tier],
	}, nil
}

func item(id string, lp int) riot.LeagueItem {
	return riot.LeagueItem{SummonerID: id, SummonerName: "name-" + id, LeaguePoints: lp, Wins: 10, Losses: 5}
}

func TestFetchRegionMergesAllTiers(t *testing.T) {
	api := &stubLadder{
		entries: map[riot.Region]map[domain.RankTier][]riot.LeagueItem{
			riot.RegionEUW: {
				domain.TierMaster:      {item("m1", 100), item("m2", 200)},
				domain.TierGrandmaster: {item("gm1", 700)},
				domain.TierChallenger:  {item("c1", 1200)},
			},
		},
	}
	f := New(api, zerolog.Nop())

	entries, counts, err := f.FetchRegion(context.Background(), riot.RegionEUW)

	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Equal(t, TierCounts{Master: 2, Grandmaster: 1, Challenger: 1}, counts)

	byID := make(map[string]Entry)
	for _, e := range entries {
		byID[e.SummonerID] = e
	}
	assert.Equal(t, domain.TierMaster, byID["m1"].RankTier)
	assert.Equal(t, domain.TierGrandmaster, byID["gm1"].RankTier)
	assert.Equal(t, domain.TierChallenger, byID["c1"].RankTier)
	assert.Equal(t, "EUW1", byID["m1"].Region)
	assert.Equal(t, 15, byID["m1"].GamesPlayed())
}

func TestFetchRegionFailsWhenAnyTierFails(t *testing.T) {
	api := &stubLadder{
		entries: map[riot.Region]map[domain.RankTier][]riot.LeagueItem{
			riot.RegionEUW: {
				domain.TierMaster:     {item("m1", 100)},
				domain.TierChallenger: {item("c1", 1200)},
			},
		},
		failTier: map[domain.RankTier]bool{domain.TierGrandmaster: true},
	}
	f := New(api, zerolog.Nop())

	entries, _, err := f.FetchRegion(context.Background(), riot.RegionEUW)

	require.Error(t, err)
	assert.Empty(t, entries)
}

func TestFetchAllIsolatesRegionFailures(t *testing.T) {
	entries := make(map[riot.Region]map[domain.RankTier][]riot.LeagueItem)
	for _, region := range riot.SupportedRegions {
		entries[region] = map[domain.RankTier][]riot.LeagueItem{
			domain.TierMaster:      {item("m-"+string(region), 100)},
			domain.TierGrandmaster: {},
			domain.TierChallenger:  {},
		}
	}
	api := &stubLadder{
		entries:    entries,
		failRegion: map[riot.Region]bool{riot.RegionKR: true},
	}
	f := New(api, zerolog.Nop())

	results := f.FetchAll(context.Background())

	require.Len(t, results, len(riot.SupportedRegions))
	for _, res := range results {
		if res.Region == riot.RegionKR {
			require.Error(t, res.Err)
			assert.Empty(t, res.Entries)
			continue
		}
		require.NoError(t, res.Err, "region %s", res.Region)
		assert.Len(t, res.Entries, 1)
		assert.Equal(t, TierCounts{Master: 1}, res.Counts)
	}
}
