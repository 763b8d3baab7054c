package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/kthdsp/teachalloc/internal/app/controllers"
	appMigrations "github.com/kthdsp/teachalloc/internal/app/migrations"
	appRoutes "github.com/kthdsp/teachalloc/internal/app/routes"
	appServices "github.com/kthdsp/teachalloc/internal/app/services"
	"github.com/kthdsp/teachalloc/internal/config"
	"github.com/kthdsp/teachalloc/internal/db"
	"github.com/kthdsp/teachalloc/internal/middleware"
	"github.com/kthdsp/teachalloc/internal/pkg/logger"
	"github.com/kthdsp/teachalloc/internal/seed"
)

// Dependencies holds the wired application components.
type Dependencies struct {
	DB          *db.PostgresDB
	Services    *appServices.Services
	Controllers *appRoutes.Controllers
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to Postgres, applies migrations and seeds defaults.
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
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection established")

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.ApplyDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations applied")

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		// Seeding is best-effort; the schema itself is already in place.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway")
	}

	return database, nil
}

// BuildDependencies wires repositories, services and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) *Dependencies {
	services := appServices.NewServices(
		database,
		database.Pool,
		cfg.Allocation.DefaultMaxInstances,
		cfg.AvgHourlyRate(),
		lgr,
	)

	controllers := &appRoutes.Controllers{
		Instances: appControllers.NewInstanceController(
			services.Instances, services.Allocations, services.Catalog),
		Activities:  appControllers.NewActivityController(services.Catalog, services.Allocations),
		Allocations: appControllers.NewAllocationController(services.Allocations),
	}

	return &Dependencies{
		DB:          database,
		Services:    services,
		Controllers: controllers,
		Logger:      lgr,
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())

	appRoutes.RegisterRoutes(router, deps.Controllers)

	lgr.Info().Str("mode", cfg.Server.Mode).Msg("Router configured")
	return router
}
