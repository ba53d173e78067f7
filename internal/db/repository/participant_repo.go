package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Suyash56/quizzy-pop/internal/session"
)

// ParticipantRepository persists session participants and their scores.
type ParticipantRepository struct {
	db DB
}

// NewParticipantRepository builds a participant repository.
func NewParticipantRepository(db DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Insert adds a participant to a session.
func (r *ParticipantRepository) Insert(ctx context.Context, p *session.Participant) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO participants (id, session_id, name, score)
		VALUES ($1, $2, $3, 0)
		RETURNING joined_at`,
		p.ID, p.SessionID, p.Name)

	if err := row.Scan(&p.JoinedAt); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// GetByID fetches a participant, or (nil, nil) when absent.
func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*session.Participant, error) {
	var p session.Participant
	err := r.db.QueryRow(ctx, `
		SELECT id, session_id, name, score, joined_at
		FROM participants WHERE id = $1`, id).
		Scan(&p.ID, &p.SessionID, &p.Name, &p.Score, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch participant: %w", err)
	}
	return &p, nil
}

// ListBySession returns a session's participants, highest score first,
// earliest joiner breaking ties.
func (r *ParticipantRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]session.Participant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, name, score, joined_at
		FROM participants WHERE session_id = $1
		ORDER BY score DESC, joined_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch participants: %w", err)
	}
	defer rows.Close()

	participants := make([]session.Participant, 0)
	for rows.Next() {
		var p session.Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Name, &p.Score, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}

// UpdateScore writes a participant's final score.
func (r *ParticipantRepository) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := r.db.Exec(ctx, `UPDATE participants SET score = $2 WHERE id = $1`, id, score)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participant %s: no row updated", id)
	}
	return nil
}
