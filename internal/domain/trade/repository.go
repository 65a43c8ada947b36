package trade

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines trade record persistence operations
type Repository interface {
	Create(ctx context.Context, r *Record) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Record, error)
}
