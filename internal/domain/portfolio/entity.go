package portfolio

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType distinguishes crypto from equity holdings
type AssetType string

const (
	AssetCrypto  AssetType = "crypto"
	AssetUSStock AssetType = "us_stock"
	AssetOther   AssetType = "other"
)

// Item is one holding in a user's portfolio
type Item struct {
	ID              uuid.UUID       `db:"id"`
	UserID          uuid.UUID       `db:"user_id"`
	Symbol          string          `db:"symbol"`
	AssetType       AssetType       `db:"asset_type"`
	Quantity        decimal.Decimal `db:"quantity"`
	EntryPrice      decimal.Decimal `db:"entry_price"`
	CurrentPrice    decimal.Decimal `db:"current_price"`
	TotalValue      decimal.Decimal `db:"total_value"`
	GainLoss        decimal.Decimal `db:"gain_loss"`
	GainLossPercent decimal.Decimal `db:"gain_loss_percent"`
	PurchasedAt     *time.Time      `db:"purchased_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// Recalculate derives total value and gain/loss from quantity and prices
func (i *Item) Recalculate() {
	i.TotalValue = i.Quantity.Mul(i.CurrentPrice)
	cost := i.Quantity.Mul(i.EntryPrice)
	i.GainLoss = i.TotalValue.Sub(cost)
	if !cost.IsZero() {
		i.GainLossPercent = i.GainLoss.Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
	}
}
