package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/app/models/dto"
	"github.com/yigit/degreetracker/internal/app/repositories"
	"github.com/yigit/degreetracker/internal/pkg/apperrors"
	"github.com/yigit/degreetracker/internal/pkg/auth"
	"github.com/yigit/degreetracker/internal/pkg/session"
)

// UserStore reads user accounts
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthService handles login, session validation and logout
type AuthService struct {
	users    UserStore
	sessions *auth.SessionService
	revoked  session.Store
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, sessions *auth.SessionService, revoked session.Store, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		revoked:  revoked,
		logger:   logger,
	}
}

// Login checks the credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.SessionResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return "", nil, apperrors.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login lookup: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Info().Int64("userID", user.ID).Msg("Login failed: wrong password")
		return "", nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, apperrors.ErrAccountDisabled
	}

	token, claims, err := s.sessions.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("sessionID", claims.ID).Msg("User logged in")
	return token, &dto.SessionResponse{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName(),
		RoleType:  string(user.RoleType),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate validates a session token and returns the caller's identity
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.sessions.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("session revocation check: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	// disabled accounts and role changes apply to live sessions
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("session user lookup: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return &models.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.RoleType,
		SessionID: claims.ID,
	}, nil
}

// Logout revokes the caller's session until its token would have expired
func (s *AuthService) Logout(ctx context.Context, identity *models.Identity) error {
	if identity == nil || identity.SessionID == "" {
		return apperrors.ErrUnauthenticated
	}

	if err := s.revoked.Revoke(ctx, identity.SessionID, s.sessions.Expiration()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.logger.Info().Int64("userID", identity.UserID).Str("sessionID", identity.SessionID).Msg("User logged out")
	return nil
}

// SessionLifetime is how long an issued session stays valid
func (s *AuthService) SessionLifetime() time.Duration {
	return s.sessions.Expiration()
}
