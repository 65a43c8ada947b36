package article

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines article persistence operations
type Repository interface {
	Create(ctx context.Context, a *Article) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Article, error)
	ListByCategory(ctx context.Context, userID uuid.UUID, category Category, limit int) ([]Article, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}
