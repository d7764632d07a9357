package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sheetcharts/internal/admin"
	"sheetcharts/internal/config"
	"sheetcharts/internal/container"
	"sheetcharts/internal/errors"
	"sheetcharts/internal/migration"
	"sheetcharts/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase opens the PostgreSQL pool and brings the schema up to date
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}
	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)
	db.SetMaxIdleConns(appConfig.Database.MaxIdleConns)
	db.SetConnMaxLifetime(appConfig.Database.ConnMaxLifetime)

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.InitWithDatabase(db); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	if err := appContainer.EnsureDefaultUser(ctx); err != nil {
		log.Fatalf("Failed to ensure default user exists: %v", err)
	}

	server := ui.NewServer(appConfig, appContainer.DatasetService, appContainer.ChartService, appContainer.UserRepo)
	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start(":" + appConfig.Server.Port)
	}()

	var adminServer *admin.Server
	if appConfig.Admin.Enabled {
		adminServer = admin.NewServer(db)
		go func() {
			log.Printf("View profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Admin.Port)
			errCh <- adminServer.Start(":" + appConfig.Admin.Port)
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown failed: %v", err)
	}
	if adminServer != nil {
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Admin server shutdown failed: %v", err)
		}
	}
	log.Println("Server stopped")
}
