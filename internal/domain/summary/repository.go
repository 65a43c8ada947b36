package summary

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines daily summary persistence operations
type Repository interface {
	// Upsert inserts the summary or replaces the existing row for the
	// same (user, date); the latest generated text wins.
	Upsert(ctx context.Context, s *DailySummary) error
	ListRecent(ctx context.Context, userID uuid.UUID, days int) ([]DailySummary, error)
}
