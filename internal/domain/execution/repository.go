package execution

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines execution log persistence operations
type Repository interface {
	Create(ctx context.Context, r *Run) error
	// Finish closes a run exactly once, recording the terminal status,
	// counts, duration and (for failures) the error message.
	Finish(ctx context.Context, r *Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)
	ListByUserAndAgent(ctx context.Context, userID uuid.UUID, agent Agent, limit int) ([]Run, error)
}
