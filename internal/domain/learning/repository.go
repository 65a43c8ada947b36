package learning

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines learning content persistence operations
type Repository interface {
	// Create inserts a lesson. The storage layer enforces uniqueness on
	// (user, date) with a conflict-handled insert: when a row for the
	// same day already exists, errors.ErrAlreadyExists is returned and
	// nothing is written. This closes the read-then-write race window
	// between concurrent same-day runs.
	Create(ctx context.Context, c *Content) error
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*Content, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Content, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}
