package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/app/models/dto"
	"github.com/yigit/degreetracker/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator map[string]*models.Identity

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.Identity, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return nil, apperrors.ErrTokenInvalid
}

func newTestRouter() *gin.Engine {
	m := NewAuthMiddleware(fakeAuthenticator{
		"student-token": {UserID: 1, Role: models.RoleStudent, SessionID: "s1"},
		"admin-token":   {UserID: 2, Role: models.RoleAdmin, SessionID: "s2"},
	}, "auth_session")

	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()), m.SessionAuth())
	r.GET("/whoami", func(c *gin.Context) {
		if id := GetIdentity(c); id != nil {
			c.String(http.StatusOK, "%d", id.UserID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/student", m.RoleRequired(models.RoleStudent, nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestSessionAuth(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		expect string
	}{
		{name: "cookie", setup: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "auth_session", Value: "student-token"})
		}, expect: "1"},
		{name: "bearer header", setup: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer admin-token")
		}, expect: "2"},
		{name: "invalid token continues anonymously", setup: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "auth_session", Value: "forged"})
		}, expect: "anonymous"},
		{name: "no credentials", setup: func(*http.Request) {}, expect: "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expect, w.Body.String())
		})
	}
}

func TestRoleRequired(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/student", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, dto.ErrorCodeUnauthorized, body.Error.Code)

	req = httptest.NewRequest(http.MethodGet, "/student", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/student", nil)
	req.AddCookie(&http.Cookie{Name: "auth_session", Value: "student-token"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Unauthorized"},
		{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
		{apperrors.ErrProgramHasNoRequirements, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Program not found"},
		{apperrors.NewValidationError("Missing course or requirement ID"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Missing course or requirement ID"},
		{apperrors.NewPersistenceError("Failed to save changes", errors.New("pq: deadlock")), http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Failed to save changes"},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}
	for _, tt := range tests {
		status, detail := ErrorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, detail.Code)
		assert.Equal(t, tt.message, detail.Message)
	}
}

func TestBindRequest(t *testing.T) {
	RegisterBindingRules()
	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		var req dto.LoginRequest
		if err := BindRequest(c, &req); err != nil {
			HandleAPIError(c, err)
			return
		}
		c.String(http.StatusOK, req.Email)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "is required")
}
