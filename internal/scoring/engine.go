// Package scoring computes final participant scores for a completed session.
// The engine is pure: it sees per-question submission tallies and awards
// points, and never touches the store.
package scoring

import (
	"github.com/google/uuid"

	"github.com/Suyash56/quizzy-pop/internal/quiz"
)

// Tally summarizes one participant's submissions for one question.
type Tally struct {
	Correct   int // submissions that matched a correct option
	Incorrect int // submissions that did not
}

// Answered reports whether the participant submitted anything at all.
func (t Tally) Answered() bool {
	return t.Correct > 0 || t.Incorrect > 0
}

// Rule decides whether a tally earns the question's point. All-or-nothing:
// partial credit does not exist.
type Rule func(t Tally, correctOptionCount int) bool

// RuleFor resolves a question type to its scoring rule once, so callers
// never branch on the type string during the scoring pass.
func RuleFor(qt quiz.QuestionType) Rule {
	if qt == quiz.TypeSingle {
		return singleRule
	}
	// Anything that is not single scores as multi, including unknown
	// legacy type strings.
	return multiRule
}

// singleRule: exactly one pick, and it was the correct one.
func singleRule(t Tally, correctOptionCount int) bool {
	return t.Correct == 1 && t.Incorrect == 0
}

// multiRule: every correct option picked, nothing else.
func multiRule(t Tally, correctOptionCount int) bool {
	return t.Correct == correctOptionCount && t.Incorrect == 0
}

// QuestionGrade is a question reduced to what scoring needs.
type QuestionGrade struct {
	QuestionID         uuid.UUID
	Rule               Rule
	CorrectOptionCount int
}

// GradeQuestions resolves each question's rule and correct-option count.
func GradeQuestions(questions []quiz.Question) []QuestionGrade {
	grades := make([]QuestionGrade, 0, len(questions))
	for _, q := range questions {
		grades = append(grades, QuestionGrade{
			QuestionID:         q.ID,
			Rule:               RuleFor(q.Type),
			CorrectOptionCount: q.CorrectOptionCount(),
		})
	}
	return grades
}

// Config tunes the engine.
type Config struct {
	// PointsPerQuestion is the award for a fully correct question.
	PointsPerQuestion int
}

// DefaultConfig returns the standard one-point-per-question setup.
func DefaultConfig() Config {
	return Config{PointsPerQuestion: 1}
}

// Engine scores participants against a set of graded questions.
type Engine struct {
	cfg Config
}

// NewEngine builds an engine, applying defaults for zero config values.
func NewEngine(cfg Config) *Engine {
	if cfg.PointsPerQuestion <= 0 {
		cfg.PointsPerQuestion = 1
	}
	return &Engine{cfg: cfg}
}

// Total computes one participant's final score. Tallies are keyed by
// question id; a missing key means the participant never answered that
// question and contributes zero. Questions with no correct option are
// skipped entirely so broken authoring can never award or deny points.
func (e *Engine) Total(grades []QuestionGrade, tallies map[uuid.UUID]Tally) int {
	score := 0
	for _, g := range grades {
		if g.CorrectOptionCount == 0 {
			continue
		}
		t, ok := tallies[g.QuestionID]
		if !ok {
			continue
		}
		if g.Rule(t, g.CorrectOptionCount) {
			score += e.cfg.PointsPerQuestion
		}
	}
	return score
}

// MaxTotal is the highest score achievable against the graded set.
func (e *Engine) MaxTotal(grades []QuestionGrade) int {
	max := 0
	for _, g := range grades {
		if g.CorrectOptionCount == 0 {
			continue
		}
		max += e.cfg.PointsPerQuestion
	}
	return max
}
