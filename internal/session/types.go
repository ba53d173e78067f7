package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Suyash56/quizzy-pop/internal/quiz"
)

// Status is the lifecycle state of a session. Transitions are forward-only:
// waiting -> live -> ended.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusLive    Status = "live"
	StatusEnded   Status = "ended"
)

// CanTransitionTo reports whether next is a legal forward transition.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusWaiting:
		return next == StatusLive
	case StatusLive:
		return next == StatusEnded
	default:
		return false
	}
}

// Session is one live run of a quiz, addressed by its room code.
type Session struct {
	ID                uuid.UUID
	QuizID            uuid.UUID
	HostID            uuid.UUID
	RoomCode          string
	Status            Status
	CurrentQuestionID *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Participant is an anonymous player inside a session.
type Participant struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Name      string
	Score     int
	JoinedAt  time.Time
}

// Submission is one selected option for one question by one participant.
// A multi-select answer is a batch of these rows, written atomically.
type Submission struct {
	ID            uuid.UUID
	SessionID     uuid.UUID
	ParticipantID uuid.UUID
	QuestionID    uuid.UUID
	OptionID      uuid.UUID
	IsCorrect     bool
	SubmittedAt   time.Time
}

// SubmissionWithOption joins a submission with its option text for the
// host's live tally view.
type SubmissionWithOption struct {
	Submission
	OptionText string
}

// Standing is one row of the final leaderboard for a session.
type Standing struct {
	ParticipantID uuid.UUID
	Name          string
	Score         int
}

// QuizStore reads quizzes and their questions. Absent rows come back as
// (nil, nil); the service maps that to ErrNotFound.
type QuizStore interface {
	GetQuiz(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error)
	GetQuestions(ctx context.Context, quizID uuid.UUID) ([]quiz.Question, error)
}

// SessionStore persists sessions. Insert returns ErrConflict on a room-code
// collision so the service can regenerate and retry.
type SessionStore interface {
	Insert(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	GetByRoomCode(ctx context.Context, code string) (*Session, error)
	FindByQuizAndStatus(ctx context.Context, quizID, hostID uuid.UUID, status Status) (*Session, error)
	Transition(ctx context.Context, id uuid.UUID, status Status, currentQuestionID *uuid.UUID) error
}

// ParticipantStore persists participants and their scores.
type ParticipantStore interface {
	Insert(ctx context.Context, p *Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Participant, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Participant, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score int) error
}

// SubmissionStore persists answer submissions. InsertBatch writes all rows
// in one transaction and returns ErrConflict when the store's uniqueness
// constraint rejects a duplicate.
type SubmissionStore interface {
	InsertBatch(ctx context.Context, subs []Submission) error
	ExistsForQuestion(ctx context.Context, sessionID, participantID, questionID uuid.UUID) (bool, error)
	ListByQuestion(ctx context.Context, sessionID, questionID uuid.UUID) ([]SubmissionWithOption, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Submission, error)
}

// FeedPublisher pushes change-feed events. Publishing is best-effort: the
// store is authoritative and consumers re-fetch, so publishers log failures
// instead of returning them.
type FeedPublisher interface {
	SessionUpdate(ctx context.Context, s *Session)
	ParticipantJoined(ctx context.Context, sessionID uuid.UUID, p *Participant)
	SubmissionRecorded(ctx context.Context, sessionID, questionID uuid.UUID, count int)
	ScoresReady(ctx context.Context, sessionID uuid.UUID)
}

// StandingsRecorder snapshots final standings for the live leaderboard view.
type StandingsRecorder interface {
	RecordStandings(ctx context.Context, sessionID uuid.UUID, standings []Standing) error
}
