package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/app/models/dto"
	"github.com/yigit/degreetracker/internal/app/repositories"
	"github.com/yigit/degreetracker/internal/pkg/apperrors"
	"github.com/yigit/degreetracker/internal/pkg/auth"
	"github.com/yigit/degreetracker/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (f fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func newAuthFixture(t *testing.T) (*AuthService, fakeUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := fakeUsers{
		"jane@uni.edu": {ID: 5, Email: "jane@uni.edu", Password: string(hash), FirstName: "Jane", LastName: "Doe",
			RoleType: models.RoleStudent, IsActive: true},
		"old@uni.edu": {ID: 6, Email: "old@uni.edu", Password: string(hash), RoleType: models.RoleStudent, IsActive: false},
	}
	sessions := auth.NewSessionService(auth.SessionConfig{SecretKey: "secret", Expiration: time.Hour, TokenIssuer: "test"})
	return NewAuthService(users, sessions, session.NewMemoryStore(), zerolog.Nop()), users
}

func TestAuthService_LoginAuthenticateLogout(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	token, resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "jane@uni.edu", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", resp.FullName)
	assert.Equal(t, "STUDENT", resp.RoleType)

	id, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id.UserID)
	assert.Equal(t, models.RoleStudent, id.Role)
	assert.NotEmpty(t, id.SessionID)

	require.NoError(t, svc.Logout(ctx, id))

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, &dto.LoginRequest{Email: "jane@uni.edu", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@uni.edu", Password: "correct horse"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "unknown accounts look like wrong passwords")

	_, _, err = svc.Login(ctx, &dto.LoginRequest{Email: "old@uni.edu", Password: "correct horse"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)

	_, _, err = svc.Login(ctx, &dto.LoginRequest{Email: " ", Password: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAuthService_AuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestAuthService_LogoutWithoutSession(t *testing.T) {
	svc, _ := newAuthFixture(t)

	assert.ErrorIs(t, svc.Logout(context.Background(), nil), apperrors.ErrUnauthenticated)
}

func TestAuthService_AuthenticateRechecksAccount(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, &dto.LoginRequest{Email: "jane@uni.edu", Password: "correct horse"})
	require.NoError(t, err)

	users["jane@uni.edu"].IsActive = false
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)

	delete(users, "jane@uni.edu")
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}
