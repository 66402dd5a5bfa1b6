package domain

import (
	"time"
)

// RankTier is one of the three apex ranked tiers tracked by the system.
type RankTier string

const (
	TierMaster      RankTier = "MASTER"
	TierGrandmaster RankTier = "GRANDMASTER"
	TierChallenger  RankTier = "CHALLENGER"
)

// Player is one row of the current apex tier snapshot, keyed by
// (SummonerID, Region). UpdatedAt is bumped on every cycle that sees the
// player; the demotion check compares demotion timestamps against it.
type Player struct {
	SummonerID   string
	SummonerName string
	Region       string
	RankTier     RankTier
	CurrentLP    int
	Wins         int
	Losses       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Player) GamesPlayed() int {
	return p.Wins + p.Losses
}

// Dodge is an immutable detected dodge. DodgeID is a database sequence and
// defines the global feed ordering.
type Dodge struct {
	DodgeID    int64
	SummonerID string
	Region     string
	RankTier   RankTier
	LPBefore   int
	LPAfter    int
	AtWins     int
	AtLosses   int
	CreatedAt  time.Time
}

// Promotion logs entry into the tracked apex tier population.
type Promotion struct {
	ID         int64
	SummonerID string
	Region     string
	AtWins     int
	AtLosses   int
	CreatedAt  time.Time
}

// Demotion logs exit from the tracked apex tier population. The log doubles
// as the duplicate-emission guard across cycles.
type Demotion struct {
	ID         int64
	SummonerID string
	Region     string
	AtWins     int
	AtLosses   int
	CreatedAt  time.Time
}

// Summoner is the region-scoped identity of a dodging player, keyed by the
// globally stable puuid.
type Summoner struct {
	Puuid         string
	SummonerID    string
	Region        string
	AccountID     string
	ProfileIconID int
	SummonerLevel int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RiotID is the linked global account for a summoner. LolprosSlug is only
// resolved for primary-region accounts and may stay nil.
type RiotID struct {
	Puuid       string
	GameName    string
	TagLine     string
	LolprosSlug *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlayerCount is a per-cycle observability row: how many players a
// region/tier held when the snapshot was fetched.
type PlayerCount struct {
	ID          int64
	Region      string
	RankTier    RankTier
	PlayerCount int
	AtTime      time.Time
}
