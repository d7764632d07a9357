package migration

import (
	"context"
	"fmt"
	"log"

	"sheetcharts/domain/core"
	"sheetcharts/internal/errors"
	"sheetcharts/models"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

type step struct {
	name string
	sql  string
}

// Tables in dependency order; Reset drops them in reverse.
var tables = []string{"users", "datasets", "chart_history"}

func (r *MigrationRunner) steps() []step {
	return []step{
		{"users table", `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				email VARCHAR(255) UNIQUE NOT NULL,
				username VARCHAR(100) UNIQUE,
				is_active BOOLEAN DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"datasets table", `
			CREATE TABLE IF NOT EXISTS datasets (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				original_filename VARCHAR(255) NOT NULL,
				file_size BIGINT NOT NULL DEFAULT 0,
				mime_type VARCHAR(100),
				sheet_name VARCHAR(255),
				checksum VARCHAR(32) NOT NULL,
				record_count INTEGER NOT NULL DEFAULT 0,
				field_count INTEGER NOT NULL DEFAULT 0,
				headers JSONB NOT NULL DEFAULT '[]'::jsonb,
				rows JSONB NOT NULL DEFAULT '[]'::jsonb,
				columns JSONB NOT NULL DEFAULT '[]'::jsonb,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"chart_history table", `
			CREATE TABLE IF NOT EXISTS chart_history (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				dataset_id UUID REFERENCES datasets(id) ON DELETE SET NULL,
				title VARCHAR(255) NOT NULL DEFAULT '',
				chart_type VARCHAR(20) NOT NULL,
				config JSONB NOT NULL DEFAULT '{}'::jsonb,
				data JSONB NOT NULL DEFAULT '{}'::jsonb,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
	}
}

func (r *MigrationRunner) indexes() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_datasets_user_created ON datasets(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_datasets_user_checksum ON datasets(user_id, checksum)",
		"CREATE INDEX IF NOT EXISTS idx_chart_history_user_created ON chart_history(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_chart_history_dataset ON chart_history(dataset_id)",
	}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range r.steps() {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.Wrap(err, "failed to create "+s.name)
		}
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.insertDefaultUser(ctx, db); err != nil {
		return errors.Wrap(err, "failed to insert default user")
	}

	log.Printf("[Migration] schema version %s applied", r.version)
	return nil
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	for _, idxSQL := range r.indexes() {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			log.Printf("[Migration] Warning: failed to create index: %v", err)
		}
	}
	return nil
}

func (r *MigrationRunner) insertDefaultUser(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, is_active)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (email) DO NOTHING
	`, core.DefaultUserID.String(), models.DefaultUserEmail, models.DefaultUserUsername)
	if err != nil {
		// Log but don't fail on default user insertion
		log.Printf("[Migration] Warning: failed to insert default user: %v", err)
	}
	return nil
}

// Reset drops every table this runner manages. Data is lost.
func (r *MigrationRunner) Reset(ctx context.Context, db *sqlx.DB) error {
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", tables[i])); err != nil {
			return errors.Wrapf(err, "failed to drop table %s", tables[i])
		}
	}
	log.Printf("[Migration] dropped tables %v", tables)
	return nil
}
