package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alpha/internal/domain/article"
)

// Compile-time check
var _ article.Repository = (*ArticleRepository)(nil)

// ArticleRepository implements article.Repository using sqlx
type ArticleRepository struct {
	db DBTX
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db DBTX) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts a new article
func (r *ArticleRepository) Create(ctx context.Context, a *article.Article) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO articles (
			id, user_id, title, description, content, url, image_url,
			source, category, relevance_score, is_read, is_saved,
			published_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.Title, a.Description, a.Content, a.URL, a.ImageURL,
		a.Source, a.Category, a.RelevanceScore, a.IsRead, a.IsSaved,
		a.PublishedAt, a.CreatedAt,
	)

	return err
}

// ListByUser retrieves articles for a user, newest first
func (r *ArticleRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]article.Article, error) {
	var articles []article.Article

	query := `
		SELECT * FROM articles
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &articles, query, userID, limit, offset); err != nil {
		return nil, err
	}

	return articles, nil
}

// ListByCategory retrieves articles in one category, newest first
func (r *ArticleRepository) ListByCategory(ctx context.Context, userID uuid.UUID, category article.Category, limit int) ([]article.Article, error) {
	var articles []article.Article

	query := `
		SELECT * FROM articles
		WHERE user_id = $1 AND category = $2
		ORDER BY created_at DESC
		LIMIT $3`

	if err := r.db.SelectContext(ctx, &articles, query, userID, category, limit); err != nil {
		return nil, err
	}

	return articles, nil
}

// CountByUser returns the number of stored articles for a user
func (r *ArticleRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM articles WHERE user_id = $1`

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}

	return count, nil
}
