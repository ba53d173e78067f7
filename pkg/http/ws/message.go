package ws

import "encoding/json"

// MessageType constants for the WebSocket protocol.
const (
	// Client -> Server
	TypeWatchSession = "watch_session"
	TypePing         = "ping"

	// Server -> Client
	TypeSessionUpdate       = "session_update"
	TypeParticipantJoined   = "participant_joined"
	TypeSubmissionRecorded  = "submission_recorded"
	TypeScoresReady         = "scores_ready"
	TypeWatchAck            = "watch_ack"
	TypeError               = "error"
	TypePong                = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type WatchSessionPayload struct {
	SessionID string `json:"session_id"`
}

// Server Messages (outgoing)

type WatchAckPayload struct {
	SessionID string `json:"session_id"`
}

type SessionUpdatePayload struct {
	SessionID         string `json:"session_id"`
	Status            string `json:"status"`
	CurrentQuestionID string `json:"current_question_id,omitempty"`
}

type ParticipantJoinedPayload struct {
	SessionID       string `json:"session_id"`
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
}

type SubmissionRecordedPayload struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Count      int    `json:"count"`
}

type ScoresReadyPayload struct {
	SessionID string `json:"session_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
