// Package bootstrap wires configuration, the database and the
// application dependency graph together at startup.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/kickabout/kickabout/internal/app/controllers"
	appMigrations "github.com/kickabout/kickabout/internal/app/migrations"
	appRepos "github.com/kickabout/kickabout/internal/app/repositories"
	appRoutes "github.com/kickabout/kickabout/internal/app/routes"
	appServices "github.com/kickabout/kickabout/internal/app/services"
	"github.com/kickabout/kickabout/internal/config"
	"github.com/kickabout/kickabout/internal/db"
	appMiddleware "github.com/kickabout/kickabout/internal/middleware"
	pkgAuth "github.com/kickabout/kickabout/internal/pkg/auth"
	"github.com/kickabout/kickabout/internal/pkg/email"
	"github.com/kickabout/kickabout/internal/pkg/geocoding"
	"github.com/kickabout/kickabout/internal/pkg/helpers"
	"github.com/kickabout/kickabout/internal/pkg/logger"
	"github.com/kickabout/kickabout/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          *appServices.AuthService
	UserService          *appServices.UserService
	LocationService      *appServices.LocationService
	CommunityService     *appServices.CommunityService
	EventService         *appServices.EventService
	DiscussionService    *appServices.DiscussionService
	AuthController       *appControllers.AuthController
	UserController       *appControllers.UserController
	LocationController   *appControllers.LocationController
	CommunityController  *appControllers.CommunityController
	EventController      *appControllers.EventController
	DiscussionController *appControllers.DiscussionController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default game types and communities.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Pool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		// Seeding failures are logged but do not block startup.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
	}, lgr)

	geocoder := geocoding.NewGoogleClient(cfg.Geocoding.APIKey)

	deps.LocationService = appServices.NewLocationService(
		geocoder,
		deps.Repos.UserRepository,
		deps.Repos.CommunityRepository,
		appServices.CommunityDefaults{
			City:    cfg.Community.DefaultCity,
			State:   cfg.Community.DefaultState,
			Country: cfg.Community.DefaultCountry,
		},
		lgr,
	)

	deps.AuthService = appServices.NewAuthService(
		database,
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		emailService,
		deps.LocationService,
		lgr,
	)

	deps.UserService = appServices.NewUserService(
		deps.Repos.UserRepository,
		deps.Repos.GameEventRepository,
		lgr,
	)

	deps.CommunityService = appServices.NewCommunityService(
		deps.Repos.CommunityRepository,
		deps.Repos.UserRepository,
		deps.Repos.GameEventRepository,
		deps.Repos.DiscussionRepository,
		lgr,
	)

	deps.EventService = appServices.NewEventService(
		database,
		deps.Repos.GameEventRepository,
		deps.Repos.GameTypeRepository,
		deps.LocationService,
		deps.Repos.UserRepository,
		lgr,
	)

	deps.DiscussionService = appServices.NewDiscussionService(
		deps.Repos.DiscussionRepository,
		deps.Repos.CommunityRepository,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.UserController = appControllers.NewUserController(deps.UserService, lgr)
	deps.LocationController = appControllers.NewLocationController(
		deps.LocationService,
		deps.UserService,
		deps.EventService,
		deps.CommunityService,
		lgr,
	)
	deps.CommunityController = appControllers.NewCommunityController(deps.CommunityService, lgr)
	deps.EventController = appControllers.NewEventController(deps.EventService, lgr)
	deps.DiscussionController = appControllers.NewDiscussionController(deps.DiscussionService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.LocationController,
		deps.CommunityController,
		deps.EventController,
		deps.DiscussionController,
		deps.AuthMiddleware,
	)

	return router
}
