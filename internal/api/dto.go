package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"alpha/internal/domain/article"
	"alpha/internal/domain/execution"
	"alpha/internal/domain/learning"
	"alpha/internal/domain/message"
	"alpha/internal/domain/portfolio"
	"alpha/internal/domain/signal"
	"alpha/internal/domain/summary"
	"alpha/internal/domain/trade"
)

type runDTO struct {
	ID             uuid.UUID  `json:"id"`
	Agent          string     `json:"agent"`
	Status         string     `json:"status"`
	ItemsProcessed int        `json:"itemsProcessed"`
	ItemsFailed    int        `json:"itemsFailed"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	DurationMs     int64      `json:"durationMs"`
	StartedAt      time.Time  `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
}

func toRunDTO(r *execution.Run) runDTO {
	return runDTO{
		ID:             r.ID,
		Agent:          string(r.Agent),
		Status:         string(r.Status),
		ItemsProcessed: r.ItemsProcessed,
		ItemsFailed:    r.ItemsFailed,
		ErrorMessage:   r.ErrorMessage,
		DurationMs:     r.DurationMs,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}

func toRunDTOs(runs []execution.Run) []runDTO {
	out := make([]runDTO, 0, len(runs))
	for i := range runs {
		out = append(out, toRunDTO(&runs[i]))
	}
	return out
}

type articleDTO struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	URL            string     `json:"url"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	Source         string     `json:"source"`
	Category       string     `json:"category"`
	RelevanceScore float64    `json:"relevanceScore"`
	IsRead         bool       `json:"isRead"`
	IsSaved        bool       `json:"isSaved"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toArticleDTOs(articles []article.Article) []articleDTO {
	out := make([]articleDTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleDTO{
			ID:             a.ID,
			Title:          a.Title,
			Description:    a.Description,
			URL:            a.URL,
			ImageURL:       a.ImageURL,
			Source:         a.Source,
			Category:       string(a.Category),
			RelevanceScore: a.RelevanceScore,
			IsRead:         a.IsRead,
			IsSaved:        a.IsSaved,
			PublishedAt:    a.PublishedAt,
			CreatedAt:      a.CreatedAt,
		})
	}
	return out
}

type summaryDTO struct {
	ID            uuid.UUID       `json:"id"`
	Date          string          `json:"date"`
	Summary       string          `json:"summary"`
	TopArticleIDs json.RawMessage `json:"topArticleIds,omitempty"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}

func toSummaryDTOs(summaries []summary.DailySummary) []summaryDTO {
	out := make([]summaryDTO, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, summaryDTO{
			ID:            s.ID,
			Date:          s.Date,
			Summary:       s.Summary,
			TopArticleIDs: s.TopArticleIDs,
			GeneratedAt:   s.GeneratedAt,
		})
	}
	return out
}

type lessonDTO struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Topic       string          `json:"topic"`
	Category    string          `json:"category"`
	Explanation string          `json:"explanation"`
	CaseStudy   string          `json:"caseStudy"`
	KeyPoints   json.RawMessage `json:"keyPoints,omitempty"`
	Resources   json.RawMessage `json:"resources,omitempty"`
	NextTopic   string          `json:"nextTopic,omitempty"`
	IsCompleted bool            `json:"isCompleted"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toLessonDTOs(lessons []learning.Content) []lessonDTO {
	out := make([]lessonDTO, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, lessonDTO{
			ID:          l.ID,
			Date:        l.Date,
			Topic:       l.Topic,
			Category:    string(l.Category),
			Explanation: l.Explanation,
			CaseStudy:   l.CaseStudy,
			KeyPoints:   l.KeyPoints,
			Resources:   l.Resources,
			NextTopic:   l.NextTopic,
			IsCompleted: l.IsCompleted,
			CompletedAt: l.CompletedAt,
			CreatedAt:   l.CreatedAt,
		})
	}
	return out
}

type holdingDTO struct {
	ID              uuid.UUID       `json:"id"`
	Symbol          string          `json:"symbol"`
	AssetType       string          `json:"assetType"`
	Quantity        decimal.Decimal `json:"quantity"`
	EntryPrice      decimal.Decimal `json:"entryPrice"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	GainLoss        decimal.Decimal `json:"gainLoss"`
	GainLossPercent decimal.Decimal `json:"gainLossPercent"`
	PurchasedAt     *time.Time      `json:"purchasedAt,omitempty"`
}

func toHoldingDTOs(items []portfolio.Item) []holdingDTO {
	out := make([]holdingDTO, 0, len(items))
	for _, i := range items {
		out = append(out, holdingDTO{
			ID:              i.ID,
			Symbol:          i.Symbol,
			AssetType:       string(i.AssetType),
			Quantity:        i.Quantity,
			EntryPrice:      i.EntryPrice,
			CurrentPrice:    i.CurrentPrice,
			TotalValue:      i.TotalValue,
			GainLoss:        i.GainLoss,
			GainLossPercent: i.GainLossPercent,
			PurchasedAt:     i.PurchasedAt,
		})
	}
	return out
}

type signalDTO struct {
	ID          uuid.UUID       `json:"id"`
	Symbol      string          `json:"symbol"`
	AssetType   string          `json:"assetType"`
	Signal      string          `json:"signal"`
	Reason      string          `json:"reason,omitempty"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
	StopLoss    decimal.Decimal `json:"stopLoss"`
	RiskLevel   string          `json:"riskLevel"`
	Confidence  float64         `json:"confidence"`
	IsActioned  bool            `json:"isActioned"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toSignalDTOs(signals []signal.Signal) []signalDTO {
	out := make([]signalDTO, 0, len(signals))
	for _, s := range signals {
		out = append(out, signalDTO{
			ID:          s.ID,
			Symbol:      s.Symbol,
			AssetType:   string(s.AssetType),
			Signal:      string(s.Verdict),
			Reason:      s.Reason,
			TargetPrice: s.TargetPrice,
			StopLoss:    s.StopLoss,
			RiskLevel:   string(s.RiskLevel),
			Confidence:  s.Confidence,
			IsActioned:  s.IsActioned,
			CreatedAt:   s.CreatedAt,
		})
	}
	return out
}

type tradeDTO struct {
	ID          uuid.UUID       `json:"id"`
	Symbol      string          `json:"symbol"`
	AssetType   string          `json:"assetType"`
	TradeType   string          `json:"tradeType"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Reason      string          `json:"reason,omitempty"`
	SignalID    *uuid.UUID      `json:"signalId,omitempty"`
	ExecutedAt  time.Time       `json:"executedAt"`
}

func toTradeDTOs(trades []trade.Record) []tradeDTO {
	out := make([]tradeDTO, 0, len(trades))
	for _, tr := range trades {
		out = append(out, tradeDTO{
			ID:          tr.ID,
			Symbol:      tr.Symbol,
			AssetType:   string(tr.AssetType),
			TradeType:   string(tr.TradeType),
			Quantity:    tr.Quantity,
			Price:       tr.Price,
			TotalAmount: tr.TotalAmount,
			Reason:      tr.Reason,
			SignalID:    tr.SignalID,
			ExecutedAt:  tr.ExecutedAt,
		})
	}
	return out
}

type messageDTO struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	IsRead    bool            `json:"isRead"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toMessageDTOs(messages []message.SystemMessage) []messageDTO {
	out := make([]messageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageDTO{
			ID:        m.ID,
			Type:      string(m.Type),
			Title:     m.Title,
			Content:   m.Content,
			Metadata:  m.Metadata,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

type preferencesDTO struct {
	Interests           []string `json:"interests"`
	NotificationEmail   string   `json:"notificationEmail,omitempty"`
	NotificationEnabled bool     `json:"notificationEnabled"`
	SummaryTime         string   `json:"summaryTime,omitempty"`
	LearningTime        string   `json:"learningTime,omitempty"`
	InvestmentCheckTime string   `json:"investmentCheckTime,omitempty"`
	Timezone            string   `json:"timezone,omitempty"`
	Theme               string   `json:"theme,omitempty"`
}
