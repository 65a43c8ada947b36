package signal

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines investment signal persistence operations
type Repository interface {
	Create(ctx context.Context, s *Signal) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Signal, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]Signal, error)
	MarkActioned(ctx context.Context, id uuid.UUID) error
}
