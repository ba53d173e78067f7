package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Suyash56/quizzy-pop/internal/auth"
)

// HostRepository persists host accounts.
type HostRepository struct {
	db DB
}

// NewHostRepository builds a host repository.
func NewHostRepository(db DB) *HostRepository {
	return &HostRepository{db: db}
}

// Insert creates a host row. A duplicate email maps to auth.ErrEmailTaken.
func (r *HostRepository) Insert(ctx context.Context, h *auth.Host) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO hosts (id, email, display_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		h.ID, h.Email, h.DisplayName, h.PasswordHash)

	if err := row.Scan(&h.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("insert host: %w", err)
	}
	return nil
}

// GetByEmail fetches a host by email, or (nil, nil) when absent.
func (r *HostRepository) GetByEmail(ctx context.Context, email string) (*auth.Host, error) {
	return r.scanHost(r.db.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, created_at
		FROM hosts WHERE email = $1`, email))
}

// GetByID fetches a host by id, or (nil, nil) when absent.
func (r *HostRepository) GetByID(ctx context.Context, id uuid.UUID) (*auth.Host, error) {
	return r.scanHost(r.db.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, created_at
		FROM hosts WHERE id = $1`, id))
}

func (r *HostRepository) scanHost(row pgx.Row) (*auth.Host, error) {
	var h auth.Host
	err := row.Scan(&h.ID, &h.Email, &h.DisplayName, &h.PasswordHash, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan host: %w", err)
	}
	return &h, nil
}
