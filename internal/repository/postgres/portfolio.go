package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alpha/internal/domain/portfolio"
)

// Compile-time check
var _ portfolio.Repository = (*PortfolioRepository)(nil)

// PortfolioRepository implements portfolio.Repository using sqlx
type PortfolioRepository struct {
	db DBTX
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db DBTX) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// Create inserts a new holding
func (r *PortfolioRepository) Create(ctx context.Context, item *portfolio.Item) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}

	query := `
		INSERT INTO portfolio_items (
			id, user_id, symbol, asset_type, quantity, entry_price,
			current_price, total_value, gain_loss, gain_loss_percent,
			purchased_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.Symbol, item.AssetType, item.Quantity, item.EntryPrice,
		item.CurrentPrice, item.TotalValue, item.GainLoss, item.GainLossPercent,
		item.PurchasedAt, item.CreatedAt, item.UpdatedAt,
	)

	return err
}

// ListByUser retrieves all holdings for a user
func (r *PortfolioRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]portfolio.Item, error) {
	var items []portfolio.Item

	query := `
		SELECT * FROM portfolio_items
		WHERE user_id = $1
		ORDER BY symbol`

	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, err
	}

	return items, nil
}

// UpdatePrice writes the refreshed price and derived value fields
func (r *PortfolioRepository) UpdatePrice(ctx context.Context, item *portfolio.Item) error {
	query := `
		UPDATE portfolio_items
		SET current_price = $2,
		    total_value = $3,
		    gain_loss = $4,
		    gain_loss_percent = $5,
		    updated_at = $6
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.CurrentPrice, item.TotalValue,
		item.GainLoss, item.GainLossPercent, time.Now(),
	)

	return err
}
