package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/degreetracker/internal/app/controllers"
	appMigrations "github.com/yigit/degreetracker/internal/app/migrations"
	appRepos "github.com/yigit/degreetracker/internal/app/repositories"
	appRoutes "github.com/yigit/degreetracker/internal/app/routes"
	appServices "github.com/yigit/degreetracker/internal/app/services"
	"github.com/yigit/degreetracker/internal/app/views"
	"github.com/yigit/degreetracker/internal/config"
	"github.com/yigit/degreetracker/internal/db"
	appMiddleware "github.com/yigit/degreetracker/internal/middleware"
	pkgAuth "github.com/yigit/degreetracker/internal/pkg/auth"
	"github.com/yigit/degreetracker/internal/pkg/helpers"
	"github.com/yigit/degreetracker/internal/pkg/logger"
	"github.com/yigit/degreetracker/internal/pkg/session"
)

// DefaultConfigPath is used when CONFIG_PATH is not set
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                   *appRepos.Repositories
	SessionService          *pkgAuth.SessionService
	SessionStore            session.Store
	AuthService             *appServices.AuthService
	DegreeTrackerService    *appServices.DegreeTrackerService
	AuthController          *appControllers.AuthController
	DegreeTrackerController *appControllers.DegreeTrackerController
	AuthMiddleware          *appMiddleware.AuthMiddleware
	Logger                  zerolog.Logger
}

// Close releases what the dependencies hold open
func (d *Dependencies) Close() error {
	if d.SessionStore == nil {
		return nil
	}
	return d.SessionStore.Close()
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: cfg.Logging.Format == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lgr.Info().Str("dir", cfg.Database.MigrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.WithComponent("migrations"))
	if err := migrator.MigrateFromDirectory(ctx, cfg.Database.MigrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupSessionStore picks the revocation store: Redis when enabled, in-process memory otherwise
func SetupSessionStore(cfg *config.Config, lgr zerolog.Logger) (session.Store, error) {
	if !cfg.Redis.Enabled {
		lgr.Warn().Msg("Redis disabled, revoked sessions are kept in memory")
		return session.NewMemoryStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := session.NewRedisStore(ctx, session.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		return nil, err
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Session revocation store connected to redis")
	return store, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, store session.Store, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, SessionStore: store}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.SessionService = pkgAuth.NewSessionService(pkgAuth.SessionConfig{
		SecretKey:   cfg.Session.Secret,
		Expiration:  helpers.ParseDuration(cfg.Session.Expiration, 720*time.Hour),
		TokenIssuer: cfg.Session.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.SessionService,
		store,
		logger.WithComponent("auth"),
	)

	deps.DegreeTrackerService = appServices.NewDegreeTrackerService(
		deps.Repos.StudentRepository,
		deps.Repos.ProgramRepository,
		deps.Repos.CourseRepository,
		deps.Repos.StudentCourseRepository,
		logger.WithComponent("degree_tracker"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService, cfg.Session.CookieName)

	deps.AuthController = appControllers.NewAuthController(
		deps.AuthService,
		appControllers.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.SecureCookie},
		lgr,
	)
	deps.DegreeTrackerController = appControllers.NewDegreeTrackerController(deps.DegreeTrackerService, lgr)

	return deps
}

// SetupRouter configures the Gin engine with middleware, templates and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, database appRoutes.Pinger, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.RegisterBindingRules()

	templates, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.WithComponent("http")))
	router.SetHTMLTemplate(templates)

	appRoutes.SetupRouter(router,
		deps.DegreeTrackerController,
		deps.AuthController,
		deps.AuthMiddleware,
		database,
	)

	return router, nil
}
