package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Suyash56/quizzy-pop/internal/auth/jwt"
)

type mockHostStore struct {
	mock.Mock
}

func (m *mockHostStore) Insert(ctx context.Context, h *Host) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockHostStore) GetByEmail(ctx context.Context, email string) (*Host, error) {
	args := m.Called(ctx, email)
	h, _ := args.Get(0).(*Host)
	return h, args.Error(1)
}

func (m *mockHostStore) GetByID(ctx context.Context, id uuid.UUID) (*Host, error) {
	args := m.Called(ctx, id)
	h, _ := args.Get(0).(*Host)
	return h, args.Error(1)
}

func newAuthService(store HostStore) *Service {
	mgr := jwt.NewManager(jwt.Config{Secret: []byte("test-secret"), TTL: time.Hour})
	return NewService(store, mgr, zerolog.Nop())
}

func TestRegisterNormalizesEmailAndDefaultsName(t *testing.T) {
	store := new(mockHostStore)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(h *Host) bool {
		return h.Email == "carol@example.com" &&
			h.DisplayName == "carol" &&
			h.PasswordHash != "" &&
			h.PasswordHash != "hunter2boat"
	})).Return(nil)

	svc := newAuthService(store)
	host, token, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "  Carol@Example.COM ",
		Password: "hunter2boat",
	})
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", host.Email)
	assert.Equal(t, "carol", host.DisplayName)
	require.NotNil(t, token)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, int64(3600), token.ExpiresIn)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newAuthService(new(mockHostStore))
	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "carol@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	svc := newAuthService(new(mockHostStore))
	for _, email := range []string{"", "   ", "not-an-email"} {
		_, _, err := svc.Register(context.Background(), RegisterRequest{
			Email:    email,
			Password: "hunter2boat",
		})
		assert.Error(t, err, "email %q", email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := new(mockHostStore)
	store.On("Insert", mock.Anything, mock.Anything).Return(ErrEmailTaken)

	svc := newAuthService(store)
	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "carol@example.com",
		Password: "hunter2boat",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2boat")
	require.NoError(t, err)
	host := &Host{ID: uuid.New(), Email: "carol@example.com", DisplayName: "carol", PasswordHash: hash}

	store := new(mockHostStore)
	store.On("GetByEmail", mock.Anything, "carol@example.com").Return(host, nil)

	svc := newAuthService(store)
	got, token, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Carol@example.com",
		Password: "hunter2boat",
	})
	require.NoError(t, err)
	assert.Equal(t, host.ID, got.ID)

	// The minted token round-trips through validation.
	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, host.ID, claims.HostID)
	assert.Equal(t, host.Email, claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := HashPassword("hunter2boat")
	require.NoError(t, err)
	host := &Host{ID: uuid.New(), Email: "carol@example.com", PasswordHash: hash}

	store := new(mockHostStore)
	store.On("GetByEmail", mock.Anything, "carol@example.com").Return(host, nil)

	svc := newAuthService(store)
	_, _, err = svc.Login(context.Background(), LoginRequest{
		Email:    "carol@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	store := new(mockHostStore)
	store.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	svc := newAuthService(store)
	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "hunter2boat",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetByIDUnknownHost(t *testing.T) {
	store := new(mockHostStore)
	id := uuid.New()
	store.On("GetByID", mock.Anything, id).Return(nil, nil)

	svc := newAuthService(store)
	_, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrHostNotFound)
}

func TestValidateTokenRejectsForgedSignature(t *testing.T) {
	other := jwt.NewManager(jwt.Config{Secret: []byte("other-secret"), TTL: time.Hour})
	forged, err := other.Generate(jwt.Host{ID: uuid.New(), Email: "carol@example.com"})
	require.NoError(t, err)

	svc := newAuthService(new(mockHostStore))
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2boat")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "hunter2boat", hash)

	assert.NoError(t, VerifyPassword(hash, "hunter2boat"))
	assert.Error(t, VerifyPassword(hash, "hunter2boa"))
}
