package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/degreetracker/internal/app/controllers"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/app/models/dto"
	"github.com/yigit/degreetracker/internal/middleware"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	degreeTrackerController *controllers.DegreeTrackerController,
	authController *controllers.AuthController,
	authMiddleware *middleware.AuthMiddleware,
	database Pinger,
) {
	// Every route sees the caller's identity when a valid session is present
	router.Use(authMiddleware.SessionAuth())

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, controllers.DegreeTrackerPath)
	})

	// --- Sign in ---
	router.GET(controllers.LoginPath, authController.LoginPage)
	router.POST(controllers.LoginPath, authController.Login)
	router.POST("/logout", authController.Logout)

	// Account pages only point at the registrar; deeper paths fall back to the page itself
	router.GET("/register/*rest", authController.RedirectToBase("/register/", "Register"))
	router.GET("/forgot-password/*rest", authController.RedirectToBase("/forgot-password/", "Forgot password"))
	router.GET("/request-access/*rest", authController.RedirectToBase("/request-access/", "Request access"))

	// --- Student pages ---
	student := router.Group(controllers.DegreeTrackerPath)
	{
		student.GET("", authMiddleware.RoleRequired(models.RoleStudent, degreeTrackerController.DenyPage), degreeTrackerController.Page)

		actions := student.Group("")
		actions.Use(authMiddleware.RoleRequired(models.RoleStudent, degreeTrackerController.DenyAction))
		{
			actions.POST("/save-changes", degreeTrackerController.SaveChanges)
			actions.POST("/remove-course", degreeTrackerController.RemoveCourse)
		}
	}

	// API version group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler(database))
		v1.POST("/auth/logout", authController.APILogout)

		tracker := v1.Group("/degree-tracker")
		tracker.Use(authMiddleware.RoleRequired(models.RoleStudent, nil))
		{
			tracker.GET("", degreeTrackerController.GetDegreeTracker)
		}
	}

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
}

func healthHandler(database Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "Database unavailable")))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
