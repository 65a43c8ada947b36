package portfolio

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines portfolio persistence operations
type Repository interface {
	Create(ctx context.Context, item *Item) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Item, error)
	UpdatePrice(ctx context.Context, item *Item) error
}
