package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alpha/internal/domain/signal"
	"alpha/pkg/errors"
)

// Compile-time check
var _ signal.Repository = (*SignalRepository)(nil)

// SignalRepository implements signal.Repository using sqlx
type SignalRepository struct {
	db DBTX
}

// NewSignalRepository creates a new investment signal repository
func NewSignalRepository(db DBTX) *SignalRepository {
	return &SignalRepository{db: db}
}

// Create inserts a new signal
func (r *SignalRepository) Create(ctx context.Context, s *signal.Signal) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO investment_signals (
			id, user_id, symbol, asset_type, signal, reason,
			target_price, stop_loss, risk_level, confidence,
			is_actioned, actioned_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Symbol, s.AssetType, s.Verdict, s.Reason,
		s.TargetPrice, s.StopLoss, s.RiskLevel, s.Confidence,
		s.IsActioned, s.ActionedAt, s.CreatedAt,
	)

	return err
}

// ListByUser retrieves signals, newest first
func (r *SignalRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]signal.Signal, error) {
	var signals []signal.Signal

	query := `
		SELECT * FROM investment_signals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &signals, query, userID, limit); err != nil {
		return nil, err
	}

	return signals, nil
}

// ListActive retrieves signals not yet acted upon
func (r *SignalRepository) ListActive(ctx context.Context, userID uuid.UUID) ([]signal.Signal, error) {
	var signals []signal.Signal

	query := `
		SELECT * FROM investment_signals
		WHERE user_id = $1 AND NOT is_actioned
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &signals, query, userID); err != nil {
		return nil, err
	}

	return signals, nil
}

// MarkActioned flips the actioned flag
func (r *SignalRepository) MarkActioned(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE investment_signals
		SET is_actioned = TRUE, actioned_at = $2
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
