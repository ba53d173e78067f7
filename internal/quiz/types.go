package quiz

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType tags a question with the rule used to score it.
type QuestionType string

const (
	// TypeSingle awards the point only when the participant picked exactly
	// the one correct option.
	TypeSingle QuestionType = "single"
	// TypeMulti awards the point only when every correct option was picked
	// and nothing else.
	TypeMulti QuestionType = "multi"
)

// Valid reports whether the type is one the store accepts.
func (t QuestionType) Valid() bool {
	return t == TypeSingle || t == TypeMulti
}

// Settings are host-configurable quiz options stored as JSON.
type Settings struct {
	LeaderboardEnabled   bool `json:"leaderboardEnabled"`
	DefaultTimerSeconds  int  `json:"defaultTimerSeconds"`
	ParticipationEnabled bool `json:"participationEnabled"`
}

// DefaultSettings returns the settings applied to quizzes created without any.
func DefaultSettings() Settings {
	return Settings{
		LeaderboardEnabled:   true,
		DefaultTimerSeconds:  30,
		ParticipationEnabled: true,
	}
}

// Quiz is a host-authored quiz. Content editing happens elsewhere; this
// service only reads quizzes to run sessions against them.
type Quiz struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	Settings    Settings
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Question is a single prompt with its answer options.
type Question struct {
	ID           uuid.UUID
	QuizID       uuid.UUID
	Type         QuestionType
	Text         string
	TimerSeconds *int
	OrderIndex   int
	Options      []Option
}

// Option is one answer choice on a question.
type Option struct {
	ID         uuid.UUID
	QuestionID uuid.UUID
	Text       string
	IsCorrect  bool
	OrderIndex int
}

// CorrectOptionCount counts the options marked correct.
func (q Question) CorrectOptionCount() int {
	n := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

// OptionByID looks up an option belonging to this question.
func (q Question) OptionByID(id uuid.UUID) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
