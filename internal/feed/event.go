// Package feed is the realtime change feed: services publish typed events
// to a Redis Pub/Sub channel, and a broadcaster forwards them to WebSocket
// watchers. Events are hints; consumers re-fetch authoritative state from
// the store.
package feed

import (
	"encoding/json"

	"github.com/google/uuid"
)

// DefaultChannel is the Pub/Sub channel events travel on.
const DefaultChannel = "feed:events"

// Event types. These double as the WebSocket message types watchers see.
const (
	TypeSessionUpdate      = "session_update"
	TypeParticipantJoined  = "participant_joined"
	TypeSubmissionRecorded = "submission_recorded"
	TypeScoresReady        = "scores_ready"
)

// Event is the wire format on the Pub/Sub channel.
type Event struct {
	Type      string          `json:"type"`
	SessionID uuid.UUID       `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}
