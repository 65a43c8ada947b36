package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alpha/internal/domain/trade"
)

// Compile-time check
var _ trade.Repository = (*TradeRepository)(nil)

// TradeRepository implements trade.Repository using sqlx
type TradeRepository struct {
	db DBTX
}

// NewTradeRepository creates a new trade record repository
func NewTradeRepository(db DBTX) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create inserts a new trade record
func (r *TradeRepository) Create(ctx context.Context, t *trade.Record) error {
	if t.ExecutedAt.IsZero() {
		t.ExecutedAt = time.Now()
	}

	query := `
		INSERT INTO trade_records (
			id, user_id, symbol, asset_type, trade_type,
			quantity, price, total_amount, reason, signal_id, executed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Symbol, t.AssetType, t.TradeType,
		t.Quantity, t.Price, t.TotalAmount, t.Reason, t.SignalID, t.ExecutedAt,
	)

	return err
}

// ListByUser retrieves trade history, newest first
func (r *TradeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]trade.Record, error) {
	var records []trade.Record

	query := `
		SELECT * FROM trade_records
		WHERE user_id = $1
		ORDER BY executed_at DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &records, query, userID, limit); err != nil {
		return nil, err
	}

	return records, nil
}
