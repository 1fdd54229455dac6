package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/pkg/apperrors"
	"github.com/yigit/degreetracker/internal/pkg/auth"
	"github.com/yigit/degreetracker/internal/pkg/logger"
)

const identityKey = "identity"

// Authenticator turns a session token into the caller's identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// DenyFunc answers a request the role check rejected
type DenyFunc func(c *gin.Context, err error)

// AuthMiddleware for session authentication and role checks
type AuthMiddleware struct {
	authenticator Authenticator
	cookieName    string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		cookieName:    cookieName,
	}
}

// SessionAuth resolves the caller from the session cookie or an Authorization header.
// Requests without a valid session continue anonymously; handlers and RoleRequired decide what
// anonymous callers may do.
func (m *AuthMiddleware) SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil || token == "" {
			token, _ = auth.ExtractBearerToken(c.GetHeader("Authorization"))
		}
		if token == "" {
			c.Next()
			return
		}

		identity, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenExpired, apperrors.ErrTokenRevoked, apperrors.ErrAccountDisabled) {
				logger.Error().Err(err).Msg("Session check failed")
			}
			c.Next()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RoleRequired rejects anonymous callers and callers without the role. deny writes the response;
// nil falls back to HandleAPIError.
func (m *AuthMiddleware) RoleRequired(role models.RoleType, deny DenyFunc) gin.HandlerFunc {
	if deny == nil {
		deny = HandleAPIError
	}
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			deny(c, apperrors.ErrUnauthenticated)
			c.Abort()
			return
		}
		if identity.Role != role {
			logger.Warn().
				Int64("userID", identity.UserID).
				Str("role", string(identity.Role)).
				Str("required", string(role)).
				Msg("Access denied")
			deny(c, apperrors.ErrPermissionDenied)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity SessionAuth stored on the context, or nil
func GetIdentity(c *gin.Context) *models.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}

// SetSessionCookie writes the session cookie
func SetSessionCookie(c *gin.Context, name, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie blanks the session cookie
func ClearSessionCookie(c *gin.Context, name string, secure bool) {
	SetSessionCookie(c, name, "", -1, secure)
}

// IsHTMLRequest reports whether the client prefers an HTML answer
func IsHTMLRequest(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}
