package summary

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DailySummary holds the generated digest for one (user, calendar date).
// Date uses the caller's local calendar in YYYY-MM-DD form; at most one
// row exists per user per date, enforced by a uniqueness constraint.
type DailySummary struct {
	ID            uuid.UUID       `db:"id"`
	UserID        uuid.UUID       `db:"user_id"`
	Date          string          `db:"date"`
	Summary       string          `db:"summary"`
	TopArticleIDs json.RawMessage `db:"top_article_ids"`
	GeneratedAt   time.Time       `db:"generated_at"`
}

// GetTopArticleIDs parses the JSONB article id list
func (s *DailySummary) GetTopArticleIDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(s.TopArticleIDs) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(s.TopArticleIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetTopArticleIDs encodes the article id list to JSONB
func (s *DailySummary) SetTopArticleIDs(ids []uuid.UUID) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	s.TopArticleIDs = data
	return nil
}
