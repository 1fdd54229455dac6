package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/degreetracker/internal/app/models"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *SessionService {
	return NewSessionService(SessionConfig{
		SecretKey:   "test-secret",
		Expiration:  time.Hour,
		TokenIssuer: "degreetracker-test",
	})
}

func TestSessionService_IssueAndValidate(t *testing.T) {
	svc := newTestService()
	user := &models.User{ID: 42, Email: "jane@uni.edu", RoleType: models.RoleStudent}

	token, issued, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, issued.ID)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "jane@uni.edu", claims.Email)
	assert.Equal(t, "STUDENT", claims.RoleType)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestSessionService_Expired(t *testing.T) {
	svc := newTestService()
	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issuedAt }

	token, _, err := svc.Issue(&models.User{ID: 1, Email: "a@uni.edu", RoleType: models.RoleStudent})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestSessionService_Rejects(t *testing.T) {
	svc := newTestService()
	token, _, err := svc.Issue(&models.User{ID: 1, Email: "a@uni.edu", RoleType: models.RoleStudent})
	require.NoError(t, err)

	other := NewSessionService(SessionConfig{SecretKey: "other", Expiration: time.Hour, TokenIssuer: "degreetracker-test"})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong signing key")

	_, err = svc.Validate("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = ExtractBearerToken("abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ExtractBearerToken("Bearer ")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(string(hash), "s3cret"))
	assert.False(t, CheckPassword(string(hash), "wrong"))
}
