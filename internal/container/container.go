package container

import (
	"context"
	"fmt"
	"log"

	"sheetcharts/adapters/ingest"
	"sheetcharts/adapters/postgres"
	"sheetcharts/app"
	"sheetcharts/internal/config"
	"sheetcharts/internal/export"
	"sheetcharts/internal/testkit"
	"sheetcharts/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	UserRepo         ports.UserRepository
	DatasetRepo      ports.DatasetRepository
	ChartHistoryRepo ports.ChartHistoryRepository

	// Ingestion
	Parser ports.TableParser

	// Services
	DatasetService *app.DatasetService
	ChartService   *app.ChartService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Parser: ingest.NewParser(cfg.Server.MaxUploadRows),
	}

	return c, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.UserRepo = postgres.NewUserRepository(db)
	c.DatasetRepo = postgres.NewDatasetRepository(db)
	c.ChartHistoryRepo = postgres.NewChartHistoryRepository(db)

	c.initServices()
	log.Printf("Container initialized successfully with database connection")
	return nil
}

// InitInMemory wires the services to in-memory repositories, for local
// tooling that has no database.
func (c *Container) InitInMemory() error {
	kit, err := testkit.NewTestKit()
	if err != nil {
		return fmt.Errorf("failed to initialize in-memory storage: %w", err)
	}

	c.UserRepo = kit.UserRepository()
	c.DatasetRepo = kit.DatasetRepository()
	c.ChartHistoryRepo = kit.ChartHistoryRepository()

	c.initServices()
	log.Printf("Container initialized with in-memory storage")
	return nil
}

// initServices builds the application services over the configured repositories
func (c *Container) initServices() {
	limits := c.Config.Limits
	c.DatasetService = app.NewDatasetService(c.DatasetRepo, c.Parser, limits.PreviewRows)
	c.ChartService = app.NewChartService(c.DatasetService, c.ChartHistoryRepo, limits.MaxConcurrentAggregations, export.Options{
		Width:  c.Config.Export.ChartWidth,
		Height: c.Config.Export.ChartHeight,
	})
}

// EnsureDefaultUser makes sure the single-user fallback identity exists
func (c *Container) EnsureDefaultUser(ctx context.Context) error {
	if c.UserRepo == nil {
		return fmt.Errorf("user repository not initialized")
	}
	user, err := c.UserRepo.GetOrCreateDefaultUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure default user: %w", err)
	}
	log.Printf("Default user ready: %s", user.ID)
	return nil
}

// Shutdown releases container resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		log.Printf("Closing database connection")
		return c.DB.Close()
	}
	return nil
}
