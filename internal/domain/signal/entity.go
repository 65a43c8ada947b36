package signal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"alpha/internal/domain/portfolio"
)

// Verdict is the generated recommendation type
type Verdict string

const (
	VerdictBuy   Verdict = "buy"
	VerdictSell  Verdict = "sell"
	VerdictHold  Verdict = "hold"
	VerdictWatch Verdict = "watch"
)

// ParseVerdict coerces model output into the enum, defaulting to hold
func ParseVerdict(s string) Verdict {
	switch Verdict(s) {
	case VerdictBuy, VerdictSell, VerdictHold, VerdictWatch:
		return Verdict(s)
	default:
		return VerdictHold
	}
}

// RiskLevel grades a recommendation's risk
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParseRiskLevel coerces model output into the enum, defaulting to medium
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLevel(s)
	default:
		return RiskMedium
	}
}

// Signal is one generated investment recommendation
type Signal struct {
	ID          uuid.UUID           `db:"id"`
	UserID      uuid.UUID           `db:"user_id"`
	Symbol      string              `db:"symbol"`
	AssetType   portfolio.AssetType `db:"asset_type"`
	Verdict     Verdict             `db:"signal"`
	Reason      string              `db:"reason"`
	TargetPrice decimal.Decimal     `db:"target_price"`
	StopLoss    decimal.Decimal     `db:"stop_loss"`
	RiskLevel   RiskLevel           `db:"risk_level"`
	Confidence  float64             `db:"confidence"`
	IsActioned  bool                `db:"is_actioned"`
	ActionedAt  *time.Time          `db:"actioned_at"`
	CreatedAt   time.Time           `db:"created_at"`
}
