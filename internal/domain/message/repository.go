package message

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines system message persistence operations
type Repository interface {
	Create(ctx context.Context, m *SystemMessage) error
	ListUnread(ctx context.Context, userID uuid.UUID) ([]SystemMessage, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}
