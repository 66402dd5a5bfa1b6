package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"dodgetracker/internal/constants"
)

const notifyChannel = "dodge_insert"

// DodgeEvent is the notification payload emitted by the dodges insert
// trigger. The 64-bit id travels as a JSON string to avoid precision loss in
// javascript consumers.
type DodgeEvent struct {
	DodgeID       int64     `json:"dodge_id,string" validate:"required"`
	SummonerID    string    `json:"summoner_id" validate:"required"`
	Region        string    `json:"region" validate:"required"`
	RankTier      string    `json:"rank_tier" validate:"required,oneof=MASTER GRANDMASTER CHALLENGER"`
	LPBefore      int       `json:"lp_before" validate:"gte=0"`
	LPAfter       int       `json:"lp_after" validate:"gte=0"`
	AtGamesPlayed int       `json:"at_games_played" validate:"gte=0"`
	CreatedAt     time.Time `json:"created_at" validate:"required"`
}

// Listener is the long-lived consumer of the dodge_insert notification
// channel. It is a pure observer: no writes, no back-pressure on producers.
type Listener struct {
	pool     *pgxpool.Pool
	hub      *Hub
	validate *validator.Validate
	logger   zerolog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewListener(pool *pgxpool.Pool, hub *Hub, logger zerolog.Logger) *Listener {
	return &Listener{
		pool:     pool,
		hub:      hub,
		validate: validator.New(),
		logger:   logger,
	}
}

// Start opens the channel subscription in the background. The listener
// reconnects on connection loss until Stop is called.
func (l *Listener) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx)
	return nil
}

func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.logger.Info().Msg("listener stopped")
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.done)

	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.logger.Error().Err(err).Msg("notification stream lost, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(constants.ListenerRetryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listener connection: %w", err)
	}

	// Take the connection out of the pool: LISTEN state must never leak into
	// reused connections.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}
	l.logger.Info().Str("channel", notifyChannel).Msg("listening for dodge inserts")

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.handle(notification.Payload)
	}
}

// handle validates one notification payload and broadcasts it. Malformed
// payloads are logged and dropped; the listener and its subscribers live on.
func (l *Listener) handle(payload string) {
	event, err := l.decode(payload)
	if err != nil {
		l.logger.Error().Err(err).Str("payload", payload).Msg("dropping malformed dodge notification")
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		l.logger.Error().Err(err).Int64("dodge_id", event.DodgeID).Msg("failed to encode dodge event")
		return
	}

	l.hub.Broadcast(message)
	l.logger.Info().
		Int64("dodge_id", event.DodgeID).
		Str("region", event.Region).
		Int("subscribers", l.hub.Count()).
		Msg("broadcast dodge event")
}

func (l *Listener) decode(payload string) (*DodgeEvent, error) {
	var event DodgeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if err := l.validate.Struct(&event); err != nil {
		return nil, err
	}
	return &event, nil
}
