package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/Suyash56/quizzy-pop/pkg/http/ws"
)

// Broadcaster is the background worker bridging the Pub/Sub channel to the
// WebSocket hub. Every API instance runs one, so events published on any
// instance reach watchers connected to every instance.
type Broadcaster struct {
	rdb     *redis.Client
	hub     *ws.Hub
	channel string
	logger  zerolog.Logger
}

// NewBroadcaster wires the feed channel to a hub.
func NewBroadcaster(rdb *redis.Client, hub *ws.Hub, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{
		rdb:     rdb,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "feed_broadcaster").Logger(),
	}
}

// Run subscribes and forwards events until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	b.logger.Info().Str("channel", b.channel).Msg("feed broadcaster started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("feed broadcaster stopping")
			return
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn().Msg("feed subscription closed")
				return
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *Broadcaster) handle(raw string) {
	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		b.logger.Warn().Err(err).Msg("malformed feed event dropped")
		return
	}

	err := b.hub.BroadcastToSession(ev.SessionID, ws.Message{
		Type:    ev.Type,
		Payload: ev.Payload,
	})
	if err != nil {
		b.logger.Debug().Err(err).
			Str("type", ev.Type).
			Str("session_id", ev.SessionID.String()).
			Msg("broadcast delivery incomplete")
	}
}
