package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Host is a registered quiz presenter.
type Host struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// HostStore persists hosts. Absent rows come back as (nil, nil); Insert
// returns ErrEmailTaken when the email is already registered.
type HostStore interface {
	Insert(ctx context.Context, h *Host) error
	GetByEmail(ctx context.Context, email string) (*Host, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Host, error)
}

// RegisterRequest for email/password registration.
type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginRequest for email/password authentication.
type LoginRequest struct {
	Email    string
	Password string
}

// TokenResult is a minted access token with its lifetime.
type TokenResult struct {
	AccessToken string
	ExpiresIn   int64 // seconds
}
