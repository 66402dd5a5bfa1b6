package reconciler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dodgetracker/internal/domain"
	"dodgetracker/internal/fetcher"
)

func storedPlayer(summonerID string, lp, wins, losses int, updatedAt time.Time) domain.Player {
	return domain.Player{
		SummonerID: summonerID,
		Region:     "EUW1",
		RankTier:   domain.TierMaster,
		CurrentLP:  lp,
		Wins:       wins,
		Losses:     losses,
		UpdatedAt:  updatedAt,
	}
}

func ladderEntry(summonerID string, lp, wins, losses int) fetcher.Entry {
	return fetcher.Entry{
		SummonerID:   summonerID,
		Region:       "EUW1",
		RankTier:     domain.TierMaster,
		LeaguePoints: lp,
		Wins:         wins,
		Losses:       losses,
	}
}

func TestFindDodges(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		old       domain.Player
		fresh     fetcher.Entry
		wantDodge bool
	}{
		{
			name:      "lp drop with unchanged games is a dodge",
			old:       storedPlayer("s1", 500, 10, 5, now),
			fresh:     ladderEntry("s1", 420, 10, 5),
			wantDodge: true,
		},
		{
			name:      "lp drop of exactly the decay constant is not a dodge",
			old:       storedPlayer("s1", 500, 10, 5, now),
			fresh:     ladderEntry("s1", 425, 10, 5),
			wantDodge: false,
		},
		{
			name:      "lp drop with a completed game is not a dodge",
			old:       storedPlayer("s1", 500, 10, 5, now),
			fresh:     ladderEntry("s1", 420, 10, 6),
			wantDodge: false,
		},
		{
			name:      "lp gain is not a dodge",
			old:       storedPlayer("s1", 500, 10, 5, now),
			fresh:     ladderEntry("s1", 520, 10, 5),
			wantDodge: false,
		},
		{
			name:      "unchanged lp is not a dodge",
			old:       storedPlayer("s1", 500, 10, 5, now),
			fresh:     ladderEntry("s1", 500, 10, 5),
			wantDodge: false,
		},
		{
			name:      "small dodge penalty is a dodge",
			old:       storedPlayer("s1", 100, 30, 30, now),
			fresh:     ladderEntry("s1", 95, 30, 30),
			wantDodge: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := map[string]domain.Player{tt.old.SummonerID: tt.old}
			fresh := map[string]fetcher.Entry{tt.fresh.SummonerID: tt.fresh}

			dodges := FindDodges(old, fresh)

			if !tt.wantDodge {
				assert.Empty(t, dodges)
				return
			}

			require.Len(t, dodges, 1)
			dodge := dodges[0]
			assert.Equal(t, tt.old.SummonerID, dodge.SummonerID)
			assert.Equal(t, tt.old.Region, dodge.Region)
			assert.Equal(t, tt.old.RankTier, dodge.RankTier)
			assert.Equal(t, tt.old.CurrentLP, dodge.LPBefore)
			assert.Equal(t, tt.fresh.LeaguePoints, dodge.LPAfter)
			assert.Equal(t, tt.old.Wins, dodge.AtWins)
			assert.Equal(t, tt.old.Losses, dodge.AtLosses)
		})
	}
}

func TestFindDodgesIgnoresNewPlayers(t *testing.T) {
	fresh := map[string]fetcher.Entry{"s1": ladderEntry("s1", 420, 10, 5)}

	dodges := FindDodges(map[string]domain.Player{}, fresh)

	assert.Empty(t, dodges)
}

func TestFindPromotions(t *testing.T) {
	lastSeen := time.Now().Add(-10 * time.Minute)

	tests := []struct {
		name          string
		old           map[string]domain.Player
		demotions     map[string][]time.Time
		wantPromotion bool
	}{
		{
			name:          "absent from stored snapshot is a promotion",
			old:           map[string]domain.Player{},
			wantPromotion: true,
		},
		{
			name:          "still stored with no demotion history is not a promotion",
			old:           map[string]domain.Player{"s1": storedPlayer("s1", 500, 10, 5, lastSeen)},
			wantPromotion: false,
		},
		{
			name:          "demoted after last presence means re-entry, logged as promotion",
			old:           map[string]domain.Player{"s1": storedPlayer("s1", 500, 10, 5, lastSeen)},
			demotions:     map[string][]time.Time{"s1": {lastSeen.Add(time.Minute)}},
			wantPromotion: true,
		},
		{
			name:          "stale demotion history is not a promotion",
			old:           map[string]domain.Player{"s1": storedPlayer("s1", 500, 10, 5, lastSeen)},
			demotions:     map[string][]time.Time{"s1": {lastSeen.Add(-time.Hour)}},
			wantPromotion: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh := map[string]fetcher.Entry{"s1": ladderEntry("s1", 30, 12, 8)}

			promotions := FindPromotions(fresh, tt.old, tt.demotions)

			if !tt.wantPromotion {
				assert.Empty(t, promotions)
				return
			}

			require.Len(t, promotions, 1)
			assert.Equal(t, "s1", promotions[0].SummonerID)
			assert.Equal(t, "EUW1", promotions[0].Region)
			assert.Equal(t, 12, promotions[0].AtWins)
			assert.Equal(t, 8, promotions[0].AtLosses)
		})
	}
}

func TestFindDemotions(t *testing.T) {
	lastSeen := time.Now().Add(-10 * time.Minute)

	tests := []struct {
		name         string
		fresh        map[string]fetcher.Entry
		demotions    map[string][]time.Time
		wantDemotion bool
	}{
		{
			name:         "absent from fresh snapshot with no history is a demotion",
			fresh:        map[string]fetcher.Entry{},
			wantDemotion: true,
		},
		{
			name:         "still present is not a demotion",
			fresh:        map[string]fetcher.Entry{"s1": ladderEntry("s1", 500, 10, 5)},
			wantDemotion: false,
		},
		{
			name:         "absence already recorded after last presence is skipped",
			fresh:        map[string]fetcher.Entry{},
			demotions:    map[string][]time.Time{"s1": {lastSeen.Add(time.Minute)}},
			wantDemotion: false,
		},
		{
			name:         "old demotion before latest presence is logged again",
			fresh:        map[string]fetcher.Entry{},
			demotions:    map[string][]time.Time{"s1": {lastSeen.Add(-time.Hour)}},
			wantDemotion: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := map[string]domain.Player{"s1": storedPlayer("s1", 500, 10, 5, lastSeen)}

			demotions := FindDemotions(old, tt.fresh, tt.demotions)

			if !tt.wantDemotion {
				assert.Empty(t, demotions)
				return
			}

			require.Len(t, demotions, 1)
			assert.Equal(t, "s1", demotions[0].SummonerID)
			assert.Equal(t, "EUW1", demotions[0].Region)
			assert.Equal(t, 10, demotions[0].AtWins)
			assert.Equal(t, 5, demotions[0].AtLosses)
		})
	}
}

// Every key must land in exactly one of: unchanged, dodge, promotion,
// demotion.
func TestClassificationIsDisjoint(t *testing.T) {
	now := time.Now()

	old := map[string]domain.Player{
		"stays":   storedPlayer("stays", 500, 10, 5, now),
		"dodger":  storedPlayer("dodger", 600, 20, 10, now),
		"leaves":  storedPlayer("leaves", 700, 30, 15, now),
		"decayed": storedPlayer("decayed", 400, 5, 5, now),
	}
	fresh := map[string]fetcher.Entry{
		"stays":   ladderEntry("stays", 510, 11, 5),
		"dodger":  ladderEntry("dodger", 580, 20, 10),
		"decayed": ladderEntry("decayed", 325, 5, 5),
		"joins":   ladderEntry("joins", 0, 40, 40),
	}

	dodges := FindDodges(old, fresh)
	promotions := FindPromotions(fresh, old, nil)
	demotions := FindDemotions(old, fresh, nil)

	seen := make(map[string]int)
	for _, d := range dodges {
		seen[d.SummonerID]++
	}
	for _, p := range promotions {
		seen[p.SummonerID]++
	}
	for _, d := range demotions {
		seen[d.SummonerID]++
	}

	for key, count := range seen {
		assert.Equal(t, 1, count, "key %s classified %d times", key, count)
	}

	require.Len(t, dodges, 1)
	assert.Equal(t, "dodger", dodges[0].SummonerID)
	require.Len(t, promotions, 1)
	assert.Equal(t, "joins", promotions[0].SummonerID)
	require.Len(t, demotions, 1)
	assert.Equal(t, "leaves", demotions[0].SummonerID)
	assert.NotContains(t, seen, "stays")
	assert.NotContains(t, seen, "decayed")
}

// A second run over identical data must produce no new events.
func TestReRunWithIdenticalDataIsIdempotent(t *testing.T) {
	firstCycle := time.Now().Add(-time.Minute)

	fresh := map[string]fetcher.Entry{
		"s1": ladderEntry("s1", 500, 10, 5),
		"s2": ladderEntry("s2", 600, 20, 10),
	}

	// State after the first cycle committed: snapshot matches fresh, the
	// departed player's demotion is recorded after their last presence.
	old := map[string]domain.Player{
		"s1":   storedPlayer("s1", 500, 10, 5, time.Now()),
		"s2":   storedPlayer("s2", 600, 20, 10, time.Now()),
		"gone": storedPlayer("gone", 700, 30, 15, firstCycle),
	}
	demotionTimes := map[string][]time.Time{
		"gone": {firstCycle.Add(30 * time.Second)},
	}

	assert.Empty(t, FindDodges(old, fresh))
	assert.Empty(t, FindPromotions(fresh, old, demotionTimes))
	assert.Empty(t, FindDemotions(old, fresh, demotionTimes))
}
