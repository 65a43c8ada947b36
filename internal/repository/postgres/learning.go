package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"alpha/internal/domain/learning"
	"alpha/pkg/errors"
)

// Compile-time check
var _ learning.Repository = (*LearningRepository)(nil)

// LearningRepository implements learning.Repository using sqlx
type LearningRepository struct {
	db DBTX
}

// NewLearningRepository creates a new learning content repository
func NewLearningRepository(db DBTX) *LearningRepository {
	return &LearningRepository{db: db}
}

// Create inserts a lesson. The (user_id, date) uniqueness constraint
// makes concurrent same-day inserts safe: the loser of the race gets
// errors.ErrAlreadyExists instead of a duplicate row.
func (r *LearningRepository) Create(ctx context.Context, c *learning.Content) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO learning_content (
			id, user_id, date, topic, category, explanation, case_study,
			key_points, resources, next_topic, is_completed, completed_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (user_id, date) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.Date, c.Topic, c.Category, c.Explanation, c.CaseStudy,
		c.KeyPoints, c.Resources, c.NextTopic, c.IsCompleted, c.CompletedAt, c.CreatedAt,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Wrapf(errors.ErrAlreadyExists, "learning content for %s", c.Date)
	}

	return nil
}

// GetByUserAndDate retrieves the lesson for one calendar date
func (r *LearningRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*learning.Content, error) {
	var content learning.Content

	query := `SELECT * FROM learning_content WHERE user_id = $1 AND date = $2`

	err := r.db.GetContext(ctx, &content, query, userID, date)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &content, nil
}

// ListByUser retrieves lessons, newest date first
func (r *LearningRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]learning.Content, error) {
	var contents []learning.Content

	query := `
		SELECT * FROM learning_content
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &contents, query, userID, limit); err != nil {
		return nil, err
	}

	return contents, nil
}

// MarkCompleted flips the completion flag
func (r *LearningRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE learning_content
		SET is_completed = TRUE, completed_at = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.ErrNotFound
	}

	return nil
}
