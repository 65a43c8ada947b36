// Package investment implements the portfolio monitoring agent: it
// prices the user's holdings, asks the model for a recommendation per
// symbol and publishes a consolidated report.
package investment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"alpha/internal/adapters/ai"
	"alpha/internal/adapters/sources"
	"alpha/internal/domain/execution"
	"alpha/internal/domain/message"
	"alpha/internal/domain/portfolio"
	"alpha/internal/domain/signal"
	"alpha/internal/metrics"
	"alpha/internal/services/agentrun"
	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

// PriceSource resolves a crypto symbol's current market snapshot
type PriceSource interface {
	FetchPrice(ctx context.Context, symbol string) (*sources.Price, error)
}

// Service runs the investment agent
type Service struct {
	chat     ai.ChatProvider
	prices   PriceSource
	holdings portfolio.Repository
	signals  signal.Repository
	messages message.Repository
	runner   *agentrun.Runner
	log      *logger.Logger
}

func NewService(
	chat ai.ChatProvider,
	prices PriceSource,
	holdings portfolio.Repository,
	signals signal.Repository,
	messages message.Repository,
	runner *agentrun.Runner,
) *Service {
	return &Service{
		chat:     chat,
		prices:   prices,
		holdings: holdings,
		signals:  signals,
		messages: messages,
		runner:   runner,
		log:      logger.Get().With("component", "investment_agent"),
	}
}

// Trigger starts an asynchronous run and returns its id
func (s *Service) Trigger(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.runner.Start(ctx, userID, execution.AgentInvestment, func(ctx context.Context) (agentrun.Result, error) {
		return s.run(ctx, userID)
	})
}

type marketData struct {
	Symbol    string
	AssetType portfolio.AssetType
	Price     float64
	Change24h float64
	MarketCap float64
}

func (s *Service) run(ctx context.Context, userID uuid.UUID) (agentrun.Result, error) {
	var res agentrun.Result

	holdings, err := s.holdings.ListByUser(ctx, userID)
	if err != nil {
		return res, errors.Wrap(err, "load portfolio")
	}
	if len(holdings) == 0 {
		return res, errors.Wrap(agentrun.ErrPreconditionNotMet, "portfolio is empty")
	}

	priced := s.fetchMarketData(ctx, userID, holdings)
	res.ItemsProcessed = len(priced)

	generated := make([]*signal.Signal, 0, len(priced))
	for _, md := range priced {
		sig, err := s.analyze(ctx, userID, md)
		if err != nil {
			// Symbols the model cannot analyze are dropped from both
			// the store and the report.
			s.log.Warnw("analysis failed", "symbol", md.Symbol, "error", err)
			continue
		}
		generated = append(generated, sig)
	}

	for _, sig := range generated {
		if err := s.signals.Create(ctx, sig); err != nil {
			s.log.Errorw("failed to persist signal", "symbol", sig.Symbol, "error", err)
			res.ItemsFailed++
		}
	}

	report := s.generateReport(ctx, generated)

	var buyCount, sellCount int
	for _, sig := range generated {
		switch sig.Verdict {
		case signal.VerdictBuy:
			buyCount++
		case signal.VerdictSell:
			sellCount++
		}
	}

	msg := message.SystemMessage{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    message.TypeInvestmentSignal,
		Title:   "💰 Investment Decision Report",
		Content: report,
	}
	if err := msg.SetMetadata(map[string]interface{}{
		"signalCount": len(generated),
		"buyCount":    buyCount,
		"sellCount":   sellCount,
	}); err != nil {
		return res, errors.Wrap(err, "encode message metadata")
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return res, errors.Wrap(err, "persist system message")
	}

	return res, nil
}

// fetchMarketData prices the crypto holdings. Equity pricing needs a
// separate data provider and is logged and skipped until one is wired.
// A symbol whose fetch fails is dropped without failing the run.
// Holdings that do price successfully get their stored current price
// refreshed as a side effect.
func (s *Service) fetchMarketData(ctx context.Context, userID uuid.UUID, holdings []portfolio.Item) []marketData {
	var priced []marketData
	for i := range holdings {
		item := &holdings[i]
		if item.AssetType != portfolio.AssetCrypto {
			s.log.Infow("no price source for asset type, skipping", "symbol", item.Symbol, "asset_type", item.AssetType)
			metrics.SourceFetches.WithLabelValues("coingecko", "skipped").Inc()
			continue
		}

		price, err := s.prices.FetchPrice(ctx, item.Symbol)
		if err != nil {
			s.log.Warnw("price fetch failed", "symbol", item.Symbol, "error", err)
			metrics.SourceFetches.WithLabelValues("coingecko", "error").Inc()
			continue
		}
		metrics.SourceFetches.WithLabelValues("coingecko", "success").Inc()

		priced = append(priced, marketData{
			Symbol:    item.Symbol,
			AssetType: item.AssetType,
			Price:     price.USD,
			Change24h: price.Change24h,
			MarketCap: price.MarketCap,
		})

		item.CurrentPrice = decimal.NewFromFloat(price.USD)
		item.Recalculate()
		if err := s.holdings.UpdatePrice(ctx, item); err != nil {
			s.log.Warnw("failed to refresh holding price", "symbol", item.Symbol, "error", err)
		}
	}
	return priced
}

// analyze asks the model for a recommendation on one priced symbol
func (s *Service) analyze(ctx context.Context, userID uuid.UUID, md marketData) (*signal.Signal, error) {
	resp, err := s.chat.Chat(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: analyzePrompt(md)},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		metrics.ModelCalls.WithLabelValues("investment", "error").Inc()
		return nil, errors.Wrap(err, "model call")
	}
	metrics.ModelCalls.WithLabelValues("investment", "success").Inc()

	return parseSignal(resp.Content, userID, md)
}

// parseSignal validates the model's reply. Field fallbacks: unknown
// verdict becomes hold, unknown risk becomes medium, a missing
// confidence becomes 0.5 and any confidence is clamped into [0,1],
// missing target and stop-loss default to +10%/-10% of the current
// price. A reply that is not a JSON object is a hard error.
func parseSignal(content string, userID uuid.UUID, md marketData) (*signal.Signal, error) {
	var raw struct {
		Signal      string   `json:"signal"`
		Reason      string   `json:"reason"`
		TargetPrice *float64 `json:"targetPrice"`
		StopLoss    *float64 `json:"stopLoss"`
		RiskLevel   string   `json:"riskLevel"`
		Confidence  *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(ai.ExtractJSON(content)), &raw); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedReply, err.Error())
	}

	current := decimal.NewFromFloat(md.Price)
	target := current.Mul(decimal.NewFromFloat(1.1))
	if raw.TargetPrice != nil {
		target = decimal.NewFromFloat(*raw.TargetPrice)
	}
	stop := current.Mul(decimal.NewFromFloat(0.9))
	if raw.StopLoss != nil {
		stop = decimal.NewFromFloat(*raw.StopLoss)
	}
	confidence := 0.5
	if raw.Confidence != nil {
		confidence = clamp01(*raw.Confidence)
	}

	return &signal.Signal{
		ID:          uuid.New(),
		UserID:      userID,
		Symbol:      md.Symbol,
		AssetType:   md.AssetType,
		Verdict:     signal.ParseVerdict(raw.Signal),
		Reason:      raw.Reason,
		TargetPrice: target,
		StopLoss:    stop,
		RiskLevel:   signal.ParseRiskLevel(raw.RiskLevel),
		Confidence:  confidence,
	}, nil
}

// generateReport writes the consolidated report text. Degrades to a
// fixed fallback on model failure.
func (s *Service) generateReport(ctx context.Context, signals []*signal.Signal) string {
	resp, err := s.chat.Chat(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: reportPrompt(signals)},
		},
		Temperature: 0.5,
		MaxTokens:   800,
	})
	if err != nil {
		s.log.Errorw("report generation failed", "error", err)
		metrics.ModelCalls.WithLabelValues("investment", "error").Inc()
		return "Investment report unavailable"
	}
	metrics.ModelCalls.WithLabelValues("investment", "success").Inc()
	return resp.Content
}

func analyzePrompt(md marketData) string {
	marketCap := "N/A"
	if md.MarketCap > 0 {
		marketCap = fmt.Sprintf("$%.0f", md.MarketCap)
	}
	return fmt.Sprintf(`You are a professional investment analyst. Generate a recommendation from the market data below.

Asset: %s (%s)
Current price: $%.4f
24h change: %.2f%%
Market cap: %s

Return a JSON object:
{
  "signal": "buy" | "sell" | "hold" | "watch",
  "reason": "rationale for the recommendation (100-150 words)",
  "targetPrice": target price as a number,
  "stopLoss": stop-loss price as a number,
  "riskLevel": "low" | "medium" | "high",
  "confidence": a number between 0.0 and 1.0
}

Requirements:
1. Base the call on technical and fundamental factors
2. Account for risk
3. Give concrete target and stop-loss prices
4. Confidence must reflect how certain the analysis is

Return only the JSON, nothing else.`,
		md.Symbol, md.AssetType, md.Price, md.Change24h, marketCap)
}

func reportPrompt(signals []*signal.Signal) string {
	group := func(v signal.Verdict) string {
		var sb strings.Builder
		for _, s := range signals {
			if s.Verdict == v {
				fmt.Fprintf(&sb, "- %s: %s\n", s.Symbol, s.Reason)
			}
		}
		return sb.String()
	}
	count := func(v signal.Verdict) int {
		n := 0
		for _, s := range signals {
			if s.Verdict == v {
				n++
			}
		}
		return n
	}

	return fmt.Sprintf(`Write a concise investment report (at most 300 words) from the signals below.

Buy signals (%d):
%s
Sell signals (%d):
%s
Watch signals (%d):
%s
Cover:
1. Today's market overview
2. The main opportunities
3. Risk warnings
4. Suggested actions`,
		count(signal.VerdictBuy), group(signal.VerdictBuy),
		count(signal.VerdictSell), group(signal.VerdictSell),
		count(signal.VerdictWatch), group(signal.VerdictWatch))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
