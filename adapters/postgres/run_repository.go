package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"gobandit/domain/core"
	"gobandit/domain/run"
	"gobandit/internal/errors"
	"gobandit/ports"

	"github.com/jmoiron/sqlx"
)

const runColumns = `id, sequence_name, seed, window_size, rounds, total_reward,
	pulls_arm0, pulls_arm1, leader_switches, resets, final_leader,
	fingerprint, duration_ms, created_at`

// RunRepositoryImpl implements ports.RunLedger for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run ledger
func NewRunRepository(db *sqlx.DB) ports.RunLedger {
	return &RunRepositoryImpl{db: db}
}

// SaveRun stores an evaluation result. Traces are not persisted.
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, result *run.Result) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO bandit_runs (
			id, sequence_name, seed, window_size, rounds, total_reward,
			pulls_arm0, pulls_arm1, leader_switches, resets, final_leader,
			fingerprint, duration_ms, created_at
		) VALUES (
			:id, :sequence_name, :seed, :window_size, :rounds, :total_reward,
			:pulls_arm0, :pulls_arm1, :leader_switches, :resets, :final_leader,
			:fingerprint, :duration_ms, :created_at
		)
	`, result)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to save run"))
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*run.Result, error) {
	var result run.Result
	err := r.db.GetContext(ctx, &result, `SELECT `+runColumns+` FROM bandit_runs WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to get run"))
	}
	return &result, nil
}

// ListRuns returns runs newest first, optionally restricted to one sequence
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, filters ports.RunFilters) ([]*run.Result, error) {
	limit, offset := filters.Page()

	var results []*run.Result
	err := r.db.SelectContext(ctx, &results, `
		SELECT `+runColumns+`
		FROM bandit_runs
		WHERE ($1::text = '' OR sequence_name = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, filters.Sequence, limit, offset)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to list runs"))
	}
	return results, nil
}
