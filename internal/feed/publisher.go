package feed

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Suyash56/quizzy-pop/internal/session"
	ws "github.com/Suyash56/quizzy-pop/pkg/http/ws"
)

// Publisher pushes change-feed events to Redis. Publishing is best-effort:
// a failed publish is logged and swallowed because the store already holds
// the truth the event points at.
type Publisher struct {
	rdb     *redis.Client
	channel string
	logger  zerolog.Logger
}

// NewPublisher creates a feed publisher on the given channel.
func NewPublisher(rdb *redis.Client, channel string, logger zerolog.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{
		rdb:     rdb,
		channel: channel,
		logger:  logger.With().Str("component", "feed_publisher").Logger(),
	}
}

// SessionUpdate announces a lifecycle change (status or current question).
func (p *Publisher) SessionUpdate(ctx context.Context, s *session.Session) {
	payload := ws.SessionUpdatePayload{
		SessionID: s.ID.String(),
		Status:    string(s.Status),
	}
	if s.CurrentQuestionID != nil {
		payload.CurrentQuestionID = s.CurrentQuestionID.String()
	}
	p.publish(ctx, TypeSessionUpdate, s.ID, payload)
}

// ParticipantJoined announces a new participant in the room.
func (p *Publisher) ParticipantJoined(ctx context.Context, sessionID uuid.UUID, participant *session.Participant) {
	p.publish(ctx, TypeParticipantJoined, sessionID, ws.ParticipantJoinedPayload{
		SessionID:       sessionID.String(),
		ParticipantID:   participant.ID.String(),
		ParticipantName: participant.Name,
	})
}

// SubmissionRecorded announces an accepted answer, without revealing which
// options were picked.
func (p *Publisher) SubmissionRecorded(ctx context.Context, sessionID, questionID uuid.UUID, count int) {
	p.publish(ctx, TypeSubmissionRecorded, sessionID, ws.SubmissionRecordedPayload{
		SessionID:  sessionID.String(),
		QuestionID: questionID.String(),
		Count:      count,
	})
}

// ScoresReady announces that final scores are readable from the store.
func (p *Publisher) ScoresReady(ctx context.Context, sessionID uuid.UUID) {
	p.publish(ctx, TypeScoresReady, sessionID, ws.ScoresReadyPayload{
		SessionID: sessionID.String(),
	})
}

func (p *Publisher) publish(ctx context.Context, eventType string, sessionID uuid.UUID, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", eventType).Msg("event payload marshal failed")
		return
	}
	data, err := json.Marshal(Event{Type: eventType, SessionID: sessionID, Payload: raw})
	if err != nil {
		p.logger.Warn().Err(err).Str("type", eventType).Msg("event marshal failed")
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Warn().Err(err).
			Str("type", eventType).
			Str("session_id", sessionID.String()).
			Msg("event publish failed")
	}
}
