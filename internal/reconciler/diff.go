package reconciler

import (
	"time"

	"dodgetracker/internal/constants"
	"dodgetracker/internal/domain"
	"dodgetracker/internal/fetcher"
)

// FindDodges reports players whose LP dropped while their games-played count
// stayed the same — the signature of leaving champ select before the game
// counted. A drop of exactly the decay constant is inactivity decay, not a
// dodge.
func FindDodges(old map[string]domain.Player, fresh map[string]fetcher.Entry) []domain.Dodge {
	var dodges []domain.Dodge
	for summonerID, entry := range fresh {
		oldPlayer, ok := old[summonerID]
		if !ok {
			continue
		}

		if entry.LeaguePoints < oldPlayer.CurrentLP &&
			entry.GamesPlayed() == oldPlayer.GamesPlayed() &&
			oldPlayer.CurrentLP-entry.LeaguePoints != constants.DecayLPLoss {
			dodges = append(dodges, domain.Dodge{
				SummonerID: oldPlayer.SummonerID,
				Region:     oldPlayer.Region,
				RankTier:   oldPlayer.RankTier,
				LPBefore:   oldPlayer.CurrentLP,
				LPAfter:    entry.LeaguePoints,
				AtWins:     oldPlayer.Wins,
				AtLosses:   oldPlayer.Losses,
			})
		}
	}
	return dodges
}

// hasPromoted: a player absent from the stored snapshot entered the apex
// tiers. A player still stored but demoted after their last confirmed
// presence re-entered within the gap between cycles.
func hasPromoted(summonerID string, old map[string]domain.Player, demotions map[string][]time.Time) bool {
	oldPlayer, ok := old[summonerID]
	if !ok {
		return true
	}
	for _, demotedAt := range demotions[summonerID] {
		if demotedAt.After(oldPlayer.UpdatedAt) {
			return true
		}
	}
	return false
}

// hasDemoted: the absence is only new if no demotion was recorded since the
// player's last confirmed presence; otherwise it was already logged.
func hasDemoted(player domain.Player, demotions []time.Time) bool {
	for _, demotedAt := range demotions {
		if demotedAt.After(player.UpdatedAt) {
			return false
		}
	}
	return true
}

// FindPromotions reports entries into the tracked population.
func FindPromotions(fresh map[string]fetcher.Entry, old map[string]domain.Player, demotions map[string][]time.Time) []domain.Promotion {
	var promotions []domain.Promotion
	for summonerID, entry := range fresh {
		if hasPromoted(summonerID, old, demotions) {
			promotions = append(promotions, domain.Promotion{
				SummonerID: summonerID,
				Region:     entry.Region,
				AtWins:     entry.Wins,
				AtLosses:   entry.Losses,
			})
		}
	}
	return promotions
}

// FindDemotions reports exits from the tracked population. Callers must not
// invoke this for regions whose fetch errored: an empty fresh snapshot would
// read as a mass demotion.
func FindDemotions(old map[string]domain.Player, fresh map[string]fetcher.Entry, demotions map[string][]time.Time) []domain.Demotion {
	var result []domain.Demotion
	for summonerID, player := range old {
		if _, ok := fresh[summonerID]; ok {
			continue
		}
		if hasDemoted(player, demotions[summonerID]) {
			result = append(result, domain.Demotion{
				SummonerID: summonerID,
				Region:     player.Region,
				AtWins:     player.Wins,
				AtLosses:   player.Losses,
			})
		}
	}
	return result
}
