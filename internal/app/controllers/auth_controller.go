// Package controllers handles HTTP request handling
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/app/models/dto"
	"github.com/yigit/degreetracker/internal/middleware"
	"github.com/yigit/degreetracker/internal/pkg/apperrors"
)

// LoginPath is where the login page lives
const LoginPath = "/login"

var errBadForm = apperrors.NewValidationError("Invalid form submission")

// Authentication is the service behind login and logout
type Authentication interface {
	Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.SessionResponse, error)
	Logout(ctx context.Context, identity *models.Identity) error
	SessionLifetime() time.Duration
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthController handles authentication related operations
type AuthController struct {
	authService Authentication
	cookie      CookieConfig
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService Authentication, cookie CookieConfig, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

type loginPage struct {
	Email   string
	Message string
}

type infoPage struct {
	Title   string
	Message string
}

// LoginPage renders the login form; signed-in students go straight to the degree tracker
func (c *AuthController) LoginPage(ctx *gin.Context) {
	if identity := middleware.GetIdentity(ctx); identity != nil && identity.Role == models.RoleStudent {
		ctx.Redirect(http.StatusSeeOther, DegreeTrackerPath)
		return
	}
	ctx.HTML(http.StatusOK, "login.html", loginPage{})
}

// Login handles user login
// @Summary User login
// @Description Checks the credentials and sets the session cookie. Form posts are redirected to the degree tracker.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := middleware.BindRequest(ctx, &req); err != nil {
		c.loginFailed(ctx, req.Email, err)
		return
	}

	token, session, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.loginFailed(ctx, req.Email, err)
		return
	}

	middleware.SetSessionCookie(ctx, c.cookie.Name, token, int(c.authService.SessionLifetime().Seconds()), c.cookie.Secure)

	if middleware.IsHTMLRequest(ctx) {
		ctx.Redirect(http.StatusSeeOther, DegreeTrackerPath)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(session, "Login successful"))
}

func (c *AuthController) loginFailed(ctx *gin.Context, email string, err error) {
	status, detail := middleware.ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error().Err(err).Msg("Login failed")
	} else {
		c.logger.Info().Str("email", email).Int("status", status).Msg("Login rejected")
	}

	if middleware.IsHTMLRequest(ctx) {
		ctx.HTML(status, "login.html", loginPage{Email: strings.TrimSpace(email), Message: detail.Message})
		return
	}
	ctx.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// Logout handles the logout form: the session is revoked and the browser sent to the login page
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.endSession(ctx); err != nil {
		RenderError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, LoginPath)
}

// APILogout handles user logout
// @Summary User logout
// @Description Revokes the current session and clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} dto.ActionResult "Logout successful"
// @Failure 401 {object} dto.ErrorResponse "No session"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/logout [post]
func (c *AuthController) APILogout(ctx *gin.Context) {
	if err := c.endSession(ctx); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ActionSucceeded())
}

func (c *AuthController) endSession(ctx *gin.Context) error {
	identity := middleware.GetIdentity(ctx)
	if identity == nil {
		return apperrors.ErrUnauthenticated
	}
	if err := c.authService.Logout(ctx.Request.Context(), identity); err != nil {
		return err
	}
	middleware.ClearSessionCookie(ctx, c.cookie.Name, c.cookie.Secure)
	return nil
}

// RedirectToBase sends any sub-path of an account page back to the page itself.
// Account creation and password resets are handled by the registrar, so the page only explains that.
func (c *AuthController) RedirectToBase(base, title string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if rest := ctx.Param("rest"); rest != "" && rest != "/" {
			ctx.Redirect(http.StatusSeeOther, base)
			return
		}
		ctx.HTML(http.StatusOK, "info.html", infoPage{
			Title:   title,
			Message: "Accounts are created by the registrar's office. Please contact them for access or a password reset.",
		})
	}
}
