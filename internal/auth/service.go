// Package auth holds host identity: registration, login and the bearer
// token check protecting session mutations. Participants never
// authenticate; they are rows scoped to a session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Suyash56/quizzy-pop/internal/auth/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrHostNotFound       = errors.New("host not found")
)

// Service handles host registration and authentication.
type Service struct {
	hosts    HostStore
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// NewService creates an authentication service.
func NewService(hosts HostStore, tokenMgr *jwt.Manager, logger zerolog.Logger) *Service {
	return &Service{
		hosts:    hosts,
		tokenMgr: tokenMgr,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates a host account and mints its first token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Host, *TokenResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("valid email required")
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = email[:strings.Index(email, "@")]
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	host := &Host{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
	}
	if err := s.hosts.Insert(ctx, host); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("create host: %w", err)
	}

	token, err := s.mintToken(host)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("host_id", host.ID.String()).Str("email", email).Msg("host registered")
	return host, token, nil
}

// Login authenticates a host with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Host, *TokenResult, error) {
	host, err := s.hosts.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, nil, fmt.Errorf("fetch host: %w", err)
	}
	if host == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(host.PasswordHash, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.mintToken(host)
	if err != nil {
		return nil, nil, err
	}
	return host, token, nil
}

// GetByID fetches a host profile.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Host, error) {
	host, err := s.hosts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch host: %w", err)
	}
	if host == nil {
		return nil, ErrHostNotFound
	}
	return host, nil
}

// ValidateToken checks a bearer token and returns its claims.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokenMgr.Validate(token)
}

func (s *Service) mintToken(host *Host) (*TokenResult, error) {
	token, err := s.tokenMgr.Generate(jwt.Host{
		ID:          host.ID,
		Email:       host.Email,
		DisplayName: host.DisplayName,
	})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &TokenResult{
		AccessToken: token,
		ExpiresIn:   int64(s.tokenMgr.TTL().Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
