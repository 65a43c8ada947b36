package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"alpha/internal/domain/portfolio"
)

// Type is the trade direction
type Type string

const (
	TypeBuy  Type = "buy"
	TypeSell Type = "sell"
)

// Record is one executed trade. Records are immutable once written.
type Record struct {
	ID          uuid.UUID           `db:"id"`
	UserID      uuid.UUID           `db:"user_id"`
	Symbol      string              `db:"symbol"`
	AssetType   portfolio.AssetType `db:"asset_type"`
	TradeType   Type                `db:"trade_type"`
	Quantity    decimal.Decimal     `db:"quantity"`
	Price       decimal.Decimal     `db:"price"`
	TotalAmount decimal.Decimal     `db:"total_amount"`
	Reason      string              `db:"reason"`
	SignalID    *uuid.UUID          `db:"signal_id"`
	ExecutedAt  time.Time           `db:"executed_at"`
}
