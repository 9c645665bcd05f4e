package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"trustlens/internal/errors"
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
		version: "1.2.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createEvidencePackagesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create evidence_packages table")
	}

	if err := r.createChainResumePointsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create chain_resume_points table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createEvidencePackagesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evidence_packages (
			capture_id UUID PRIMARY KEY,
			session_id UUID NOT NULL,
			media_type VARCHAR(20) NOT NULL,
			confidence_level VARCHAR(20) NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createChainResumePointsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS chain_resume_points (
			capture_id UUID PRIMARY KEY,
			ordinal INTEGER NOT NULL,
			frame_index INTEGER NOT NULL,
			chain_link VARCHAR(64) NOT NULL,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_evidence_packages_session
			ON evidence_packages(session_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_evidence_packages_level
			ON evidence_packages(confidence_level);
	`)
	return err
}
