package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Suyash56/quizzy-pop/internal/session"
)

// SubmissionRepository persists answer submissions.
type SubmissionRepository struct {
	db DB
}

// NewSubmissionRepository builds a submission repository.
func NewSubmissionRepository(db DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// InsertBatch writes a participant's whole answer in one transaction.
// Either every row lands or none does; a duplicate row anywhere in the
// batch maps to session.ErrConflict and rolls the batch back.
func (r *SubmissionRepository) InsertBatch(ctx context.Context, subs []session.Submission) error {
	if len(subs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin submission tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := range subs {
		batch.Queue(`
			INSERT INTO submissions (id, session_id, participant_id, question_id, option_id, is_correct)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			subs[i].ID, subs[i].SessionID, subs[i].ParticipantID,
			subs[i].QuestionID, subs[i].OptionID, subs[i].IsCorrect)
	}

	results := tx.SendBatch(ctx, batch)
	for range subs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if isUniqueViolation(err) {
				return fmt.Errorf("duplicate submission: %w", session.ErrConflict)
			}
			return fmt.Errorf("insert submission: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close submission batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit submission tx: %w", err)
	}
	return nil
}

// ExistsForQuestion reports whether the participant already answered the
// question in this session.
func (r *SubmissionRepository) ExistsForQuestion(ctx context.Context, sessionID, participantID, questionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE session_id = $1 AND participant_id = $2 AND question_id = $3
		)`, sessionID, participantID, questionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check submission exists: %w", err)
	}
	return exists, nil
}

// ListByQuestion returns a question's submissions with option text joined
// in for the host's tally view.
func (r *SubmissionRepository) ListByQuestion(ctx context.Context, sessionID, questionID uuid.UUID) ([]session.SubmissionWithOption, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.session_id, s.participant_id, s.question_id, s.option_id,
		       s.is_correct, s.submitted_at, COALESCE(o.text, '')
		FROM submissions s
		LEFT JOIN options o ON o.id = s.option_id
		WHERE s.session_id = $1 AND s.question_id = $2
		ORDER BY s.submitted_at ASC`, sessionID, questionID)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]session.SubmissionWithOption, 0)
	for rows.Next() {
		var s session.SubmissionWithOption
		err := rows.Scan(&s.ID, &s.SessionID, &s.ParticipantID, &s.QuestionID,
			&s.OptionID, &s.IsCorrect, &s.SubmittedAt, &s.OptionText)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

// ListBySession returns every submission of a session for the scoring pass.
func (r *SubmissionRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]session.Submission, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, participant_id, question_id, option_id, is_correct, submitted_at
		FROM submissions WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]session.Submission, 0)
	for rows.Next() {
		var s session.Submission
		err := rows.Scan(&s.ID, &s.SessionID, &s.ParticipantID, &s.QuestionID,
			&s.OptionID, &s.IsCorrect, &s.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}
