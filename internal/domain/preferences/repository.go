package preferences

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines user preference persistence operations
type Repository interface {
	// GetByUser returns errors.ErrNotFound when the user never saved any
	GetByUser(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	Upsert(ctx context.Context, p *Preferences) error
}
