package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Suyash56/quizzy-pop/internal/session"
)

// SessionRepository persists session lifecycle state.
type SessionRepository struct {
	db DB
}

// NewSessionRepository builds a session repository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert creates a session row. A room-code collision maps to
// session.ErrConflict so the service regenerates the code.
func (r *SessionRepository) Insert(ctx context.Context, s *session.Session) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO sessions (id, quiz_id, host_id, room_code, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		s.ID, s.QuizID, s.HostID, s.RoomCode, s.Status)

	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("room code %s: %w", s.RoomCode, session.ErrConflict)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID fetches a session, or (nil, nil) when absent.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return r.scanSession(r.db.QueryRow(ctx, selectSession+` WHERE id = $1`, id))
}

// GetByRoomCode fetches a session by its (already normalized) room code.
func (r *SessionRepository) GetByRoomCode(ctx context.Context, code string) (*session.Session, error) {
	return r.scanSession(r.db.QueryRow(ctx, selectSession+` WHERE room_code = $1`, code))
}

// FindByQuizAndStatus returns the newest session of a quiz in the given
// status for this host, or (nil, nil) when there is none.
func (r *SessionRepository) FindByQuizAndStatus(ctx context.Context, quizID, hostID uuid.UUID, status session.Status) (*session.Session, error) {
	return r.scanSession(r.db.QueryRow(ctx, selectSession+`
		WHERE quiz_id = $1 AND host_id = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1`, quizID, hostID, status))
}

// Transition updates status and current question in one statement.
func (r *SessionRepository) Transition(ctx context.Context, id uuid.UUID, status session.Status, currentQuestionID *uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET status = $2, current_question_id = $3, updated_at = now()
		WHERE id = $1`,
		id, status, currentQuestionID)
	if err != nil {
		return fmt.Errorf("transition session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: no row updated", id)
	}
	return nil
}

const selectSession = `
	SELECT id, quiz_id, host_id, room_code, status, current_question_id, created_at, updated_at
	FROM sessions`

func (r *SessionRepository) scanSession(row pgx.Row) (*session.Session, error) {
	var s session.Session
	err := row.Scan(&s.ID, &s.QuizID, &s.HostID, &s.RoomCode, &s.Status,
		&s.CurrentQuestionID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &s, nil
}
