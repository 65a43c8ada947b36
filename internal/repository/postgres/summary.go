package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alpha/internal/domain/summary"
)

// Compile-time check
var _ summary.Repository = (*SummaryRepository)(nil)

// SummaryRepository implements summary.Repository using sqlx
type SummaryRepository struct {
	db DBTX
}

// NewSummaryRepository creates a new daily summary repository
func NewSummaryRepository(db DBTX) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert inserts the summary for (user, date) or replaces the existing one
func (r *SummaryRepository) Upsert(ctx context.Context, s *summary.DailySummary) error {
	if s.GeneratedAt.IsZero() {
		s.GeneratedAt = time.Now()
	}

	query := `
		INSERT INTO daily_summaries (
			id, user_id, date, summary, top_article_ids, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date) DO UPDATE SET
			summary = EXCLUDED.summary,
			top_article_ids = EXCLUDED.top_article_ids,
			generated_at = EXCLUDED.generated_at`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Date, s.Summary, s.TopArticleIDs, s.GeneratedAt,
	)

	return err
}

// ListRecent retrieves the latest summaries, newest date first
func (r *SummaryRepository) ListRecent(ctx context.Context, userID uuid.UUID, days int) ([]summary.DailySummary, error) {
	var summaries []summary.DailySummary

	query := `
		SELECT * FROM daily_summaries
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &summaries, query, userID, days); err != nil {
		return nil, err
	}

	return summaries, nil
}
