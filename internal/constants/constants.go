package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	LolprosTimeout     = 5 * time.Second
	DatabaseTimeout    = 5 * time.Second
)

const (
	// InsertChunkSize bounds the row count of a single batched write. At
	// ranked season resets tens of thousands of demotions land in one cycle.
	InsertChunkSize = 20000

	// DecayLPLoss is the fixed LP penalty for inactivity decay. An LP drop of
	// exactly this amount with unchanged games played is not a dodge.
	DecayLPLoss = 75
)

const (
	// PlayerCountMinInterval throttles the per-region tier count rows to at
	// most one triple per hour.
	PlayerCountMinInterval = 1 * time.Hour
)

const (
	DefaultUpdateInterval = 30 * time.Second
	ListenerRetryDelay    = 5 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)
