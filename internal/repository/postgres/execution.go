package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"alpha/internal/domain/execution"
	"alpha/pkg/errors"
)

// Compile-time check
var _ execution.Repository = (*ExecutionRepository)(nil)

// ExecutionRepository implements execution.Repository using sqlx
type ExecutionRepository struct {
	db DBTX
}

// NewExecutionRepository creates a new execution log repository
func NewExecutionRepository(db DBTX) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// Create inserts a run row; runs start in the running state so the
// trigger response's run id is queryable immediately
func (r *ExecutionRepository) Create(ctx context.Context, run *execution.Run) error {
	query := `
		INSERT INTO agent_runs (
			id, user_id, agent_name, status, items_processed, items_failed,
			error_message, duration_ms, started_at, finished_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.UserID, run.Agent, run.Status, run.ItemsProcessed, run.ItemsFailed,
		run.ErrorMessage, run.DurationMs, run.StartedAt, run.FinishedAt,
	)

	return err
}

// Finish closes a run with its terminal status and counts
func (r *ExecutionRepository) Finish(ctx context.Context, run *execution.Run) error {
	query := `
		UPDATE agent_runs
		SET status = $2,
		    items_processed = $3,
		    items_failed = $4,
		    error_message = $5,
		    duration_ms = $6,
		    finished_at = $7
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		run.ID, run.Status, run.ItemsProcessed, run.ItemsFailed,
		run.ErrorMessage, run.DurationMs, run.FinishedAt,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.ErrNotFound
	}

	return nil
}

// GetByID retrieves one run
func (r *ExecutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*execution.Run, error) {
	var run execution.Run

	query := `SELECT * FROM agent_runs WHERE id = $1`

	err := r.db.GetContext(ctx, &run, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// ListByUserAndAgent retrieves recent runs of one agent, newest first
func (r *ExecutionRepository) ListByUserAndAgent(ctx context.Context, userID uuid.UUID, agent execution.Agent, limit int) ([]execution.Run, error) {
	var runs []execution.Run

	query := `
		SELECT * FROM agent_runs
		WHERE user_id = $1 AND agent_name = $2
		ORDER BY started_at DESC
		LIMIT $3`

	if err := r.db.SelectContext(ctx, &runs, query, userID, agent, limit); err != nil {
		return nil, err
	}

	return runs, nil
}
