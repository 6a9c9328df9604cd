package migration

import (
	"context"

	"gobandit/internal/errors"

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

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range r.steps() {
		if _, err := db.ExecContext(ctx, step.sql); err != nil {
			return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to %s", step.name))
		}
	}
	return nil
}

type step struct {
	name string
	sql  string
}

func (r *MigrationRunner) steps() []step {
	return []step{
		{"create bandit_runs table", createBanditRunsTable},
		{"add bandit_runs columns", addBanditRunsColumns},
		{"create indexes", createIndexes},
	}
}

const createBanditRunsTable = `
	CREATE TABLE IF NOT EXISTS bandit_runs (
		id UUID PRIMARY KEY,
		sequence_name VARCHAR(255) NOT NULL,
		seed BIGINT NOT NULL,
		window_size INTEGER NOT NULL,
		rounds INTEGER NOT NULL,
		total_reward DOUBLE PRECISION NOT NULL,
		pulls_arm0 INTEGER NOT NULL DEFAULT 0,
		pulls_arm1 INTEGER NOT NULL DEFAULT 0,
		leader_switches INTEGER NOT NULL DEFAULT 0,
		resets INTEGER NOT NULL DEFAULT 0,
		final_leader INTEGER NOT NULL DEFAULT 0,
		fingerprint VARCHAR(64) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

// duration_ms arrived after the first schema; older databases get it here
const addBanditRunsColumns = `
	DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'bandit_runs' AND column_name = 'duration_ms'
		) THEN
			ALTER TABLE bandit_runs ADD COLUMN duration_ms BIGINT NOT NULL DEFAULT 0;
		END IF;
	END $$;
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_bandit_runs_sequence ON bandit_runs(sequence_name);
	CREATE INDEX IF NOT EXISTS idx_bandit_runs_created_at ON bandit_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_bandit_runs_fingerprint ON bandit_runs(fingerprint);
`
