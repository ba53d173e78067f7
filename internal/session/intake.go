package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Suyash56/quizzy-pop/internal/quiz"
)

// Intake accepts answer submissions for live sessions. One call covers one
// participant's whole answer to one question; multi-select answers land as
// a batch of rows written in a single transaction.
type Intake struct {
	quizzes      QuizStore
	sessions     SessionStore
	participants ParticipantStore
	submissions  SubmissionStore
	feed         FeedPublisher
	logger       zerolog.Logger
}

// NewIntake constructs the answer intake.
func NewIntake(deps Deps, logger zerolog.Logger) *Intake {
	return &Intake{
		quizzes:      deps.Quizzes,
		sessions:     deps.Sessions,
		participants: deps.Participants,
		submissions:  deps.Submissions,
		feed:         deps.Feed,
		logger:       logger.With().Str("component", "answer_intake").Logger(),
	}
}

// Submit records a participant's answer. It returns the number of rows
// written, which always equals the number of distinct option ids: either
// the whole batch lands or none of it does.
//
// A second answer for the same (session, participant, question) is
// rejected with ErrAlreadySubmitted, whether it is caught by the read-side
// check or by the store's uniqueness constraint under a race.
func (in *Intake) Submit(ctx context.Context, sessionID, participantID, questionID uuid.UUID, optionIDs []uuid.UUID) (int, error) {
	optionIDs = dedupe(optionIDs)
	if len(optionIDs) == 0 {
		submissionsRejected.WithLabelValues("empty").Inc()
		return 0, fmt.Errorf("at least one option required: %w", ErrValidation)
	}

	sess, err := in.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("fetch session: %w", err)
	}
	if sess == nil {
		return 0, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if sess.Status != StatusLive {
		submissionsRejected.WithLabelValues("not_live").Inc()
		return 0, fmt.Errorf("session is %s: %w", sess.Status, ErrInvalidState)
	}

	p, err := in.participants.GetByID(ctx, participantID)
	if err != nil {
		return 0, fmt.Errorf("fetch participant: %w", err)
	}
	if p == nil || p.SessionID != sess.ID {
		return 0, fmt.Errorf("participant %s: %w", participantID, ErrNotFound)
	}

	question, err := in.findQuestion(ctx, sess.QuizID, questionID)
	if err != nil {
		return 0, err
	}

	exists, err := in.submissions.ExistsForQuestion(ctx, sess.ID, p.ID, question.ID)
	if err != nil {
		return 0, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		submissionsRejected.WithLabelValues("duplicate").Inc()
		return 0, ErrAlreadySubmitted
	}

	rows := make([]Submission, 0, len(optionIDs))
	for _, optID := range optionIDs {
		// Option ids outside the question's option set are stored as
		// incorrect rather than rejected: a stale client still gets a
		// recorded (wrong) answer instead of a hard failure.
		correct := false
		if opt, ok := question.OptionByID(optID); ok {
			correct = opt.IsCorrect
		}
		rows = append(rows, Submission{
			ID:            uuid.New(),
			SessionID:     sess.ID,
			ParticipantID: p.ID,
			QuestionID:    question.ID,
			OptionID:      optID,
			IsCorrect:     correct,
		})
	}

	if err := in.submissions.InsertBatch(ctx, rows); err != nil {
		if errors.Is(err, ErrConflict) {
			submissionsRejected.WithLabelValues("duplicate").Inc()
			return 0, ErrAlreadySubmitted
		}
		return 0, fmt.Errorf("insert submissions: %w", err)
	}

	submissionsAccepted.Inc()
	in.logger.Debug().
		Str("session_id", sess.ID.String()).
		Str("participant_id", p.ID.String()).
		Str("question_id", question.ID.String()).
		Int("options", len(rows)).
		Msg("answer recorded")

	in.feed.SubmissionRecorded(ctx, sess.ID, question.ID, len(rows))
	return len(rows), nil
}

func (in *Intake) findQuestion(ctx context.Context, quizID, questionID uuid.UUID) (*quiz.Question, error) {
	questions, err := in.quizzes.GetQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	for i := range questions {
		if questions[i].ID == questionID {
			return &questions[i], nil
		}
	}
	return nil, fmt.Errorf("question %s: %w", questionID, ErrNotFound)
}

// dedupe drops repeated option ids, preserving order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
