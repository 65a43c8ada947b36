// Package api exposes the dashboard's HTTP surface. User identity comes
// from a user_id parameter; authentication sits in front of this service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"alpha/internal/domain/article"
	"alpha/internal/domain/execution"
	"alpha/internal/domain/learning"
	"alpha/internal/domain/message"
	"alpha/internal/domain/portfolio"
	"alpha/internal/domain/preferences"
	"alpha/internal/domain/signal"
	"alpha/internal/domain/summary"
	"alpha/internal/domain/trade"
	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

// AgentTrigger starts an asynchronous agent run for a user
type AgentTrigger interface {
	Trigger(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// Handler carries the API's dependencies
type Handler struct {
	triggers  map[execution.Agent]AgentTrigger
	runs      execution.Repository
	articles  article.Repository
	summaries summary.Repository
	lessons   learning.Repository
	holdings  portfolio.Repository
	signals   signal.Repository
	trades    trade.Repository
	messages  message.Repository
	prefs     preferences.Repository
	log       *logger.Logger
}

func NewHandler(
	triggers map[execution.Agent]AgentTrigger,
	runs execution.Repository,
	articles article.Repository,
	summaries summary.Repository,
	lessons learning.Repository,
	holdings portfolio.Repository,
	signals signal.Repository,
	trades trade.Repository,
	messages message.Repository,
	prefs preferences.Repository,
) *Handler {
	return &Handler{
		triggers:  triggers,
		runs:      runs,
		articles:  articles,
		summaries: summaries,
		lessons:   lessons,
		holdings:  holdings,
		signals:   signals,
		trades:    trades,
		messages:  messages,
		prefs:     prefs,
		log:       logger.Get().With("component", "api"),
	}
}

// Routes builds the /api router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/agents/{agent}", func(r chi.Router) {
		r.Post("/runs", h.triggerAgent)
		r.Get("/runs", h.listRuns)
	})
	r.Get("/runs/{id}", h.getRun)

	r.Get("/articles", h.listArticles)
	r.Get("/summaries", h.listSummaries)

	r.Get("/learning", h.listLessons)
	r.Post("/learning/{id}/complete", h.completeLesson)

	r.Get("/portfolio", h.listPortfolio)
	r.Post("/portfolio", h.addHolding)
	r.Get("/signals", h.listSignals)
	r.Post("/signals/{id}/action", h.actionSignal)
	r.Get("/trades", h.listTrades)
	r.Post("/trades", h.recordTrade)

	r.Get("/messages", h.listMessages)
	r.Post("/messages/{id}/read", h.markMessageRead)

	r.Get("/preferences", h.getPreferences)
	r.Put("/preferences", h.putPreferences)

	r.Get("/status", h.status)

	return r
}

func (h *Handler) triggerAgent(w http.ResponseWriter, r *http.Request) {
	agent, ok := execution.ParseAgent(chi.URLParam(r, "agent"))
	if !ok {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "unknown agent"))
		return
	}
	trigger, ok := h.triggers[agent]
	if !ok {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "agent not available"))
		return
	}

	var body struct {
		UserID uuid.UUID `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == uuid.Nil {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "userId is required"))
		return
	}

	runID, err := trigger.Trigger(r.Context(), body.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"runId":  runID,
		"status": string(execution.StatusRunning),
	})
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	agent, ok := execution.ParseAgent(chi.URLParam(r, "agent"))
	if !ok {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "unknown agent"))
		return
	}
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	runs, err := h.runs.ListByUserAndAgent(r.Context(), userID, agent, intParam(r, "limit", 50))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toRunDTOs(runs))
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "invalid run id"))
		return
	}
	run, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toRunDTO(run))
}

func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	limit := intParam(r, "limit", 50)

	var articles []article.Article
	if category := r.URL.Query().Get("category"); category != "" {
		articles, err = h.articles.ListByCategory(r.Context(), userID, article.ParseCategory(category), limit)
	} else {
		articles, err = h.articles.ListByUser(r.Context(), userID, limit, intParam(r, "offset", 0))
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toArticleDTOs(articles))
}

func (h *Handler) listSummaries(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	summaries, err := h.summaries.ListRecent(r.Context(), userID, intParam(r, "days", 7))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toSummaryDTOs(summaries))
}

func (h *Handler) listLessons(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	lessons, err := h.lessons.ListByUser(r.Context(), userID, intParam(r, "limit", 50))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toLessonDTOs(lessons))
}

func (h *Handler) completeLesson(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "invalid lesson id"))
		return
	}
	if err := h.lessons.MarkCompleted(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	items, err := h.holdings.ListByUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toHoldingDTOs(items))
}

func (h *Handler) addHolding(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID     uuid.UUID `json:"userId"`
		Symbol     string    `json:"symbol"`
		AssetType  string    `json:"assetType"`
		Quantity   float64   `json:"quantity"`
		EntryPrice float64   `json:"entryPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "malformed body"))
		return
	}
	if body.UserID == uuid.Nil || body.Symbol == "" || body.Quantity <= 0 || body.EntryPrice <= 0 {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "userId, symbol, positive quantity and entryPrice are required"))
		return
	}
	assetType := portfolio.AssetType(body.AssetType)
	switch assetType {
	case portfolio.AssetCrypto, portfolio.AssetUSStock, portfolio.AssetOther:
	default:
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "assetType must be crypto, us_stock or other"))
		return
	}

	item := portfolio.Item{
		ID:         uuid.New(),
		UserID:     body.UserID,
		Symbol:     body.Symbol,
		AssetType:  assetType,
		Quantity:   decimal.NewFromFloat(body.Quantity),
		EntryPrice: decimal.NewFromFloat(body.EntryPrice),
		// The next investment run refreshes the market price.
		CurrentPrice: decimal.NewFromFloat(body.EntryPrice),
	}
	item.Recalculate()
	if err := h.holdings.Create(r.Context(), &item); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": item.ID})
}

func (h *Handler) listSignals(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	signals, err := h.signals.ListByUser(r.Context(), userID, intParam(r, "limit", 50))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toSignalDTOs(signals))
}

func (h *Handler) actionSignal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "invalid signal id"))
		return
	}
	if err := h.signals.MarkActioned(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listTrades(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	trades, err := h.trades.ListByUser(r.Context(), userID, intParam(r, "limit", 100))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toTradeDTOs(trades))
}

func (h *Handler) recordTrade(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID    uuid.UUID  `json:"userId"`
		Symbol    string     `json:"symbol"`
		AssetType string     `json:"assetType"`
		TradeType string     `json:"tradeType"`
		Quantity  float64    `json:"quantity"`
		Price     float64    `json:"price"`
		Reason    string     `json:"reason"`
		SignalID  *uuid.UUID `json:"signalId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "malformed body"))
		return
	}
	if body.UserID == uuid.Nil || body.Symbol == "" || body.Quantity <= 0 || body.Price <= 0 {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "userId, symbol, positive quantity and price are required"))
		return
	}
	tradeType := trade.Type(body.TradeType)
	if tradeType != trade.TypeBuy && tradeType != trade.TypeSell {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "tradeType must be buy or sell"))
		return
	}

	quantity := decimal.NewFromFloat(body.Quantity)
	price := decimal.NewFromFloat(body.Price)
	record := trade.Record{
		ID:          uuid.New(),
		UserID:      body.UserID,
		Symbol:      body.Symbol,
		AssetType:   portfolio.AssetType(body.AssetType),
		TradeType:   tradeType,
		Quantity:    quantity,
		Price:       price,
		TotalAmount: quantity.Mul(price),
		Reason:      body.Reason,
		SignalID:    body.SignalID,
	}
	if err := h.trades.Create(r.Context(), &record); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": record.ID})
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	messages, err := h.messages.ListUnread(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toMessageDTOs(messages))
}

func (h *Handler) markMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "invalid message id"))
		return
	}
	if err := h.messages.MarkRead(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	prefs, err := h.prefs.GetByUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			// Users who never saved anything still see the defaults.
			h.respondJSON(w, http.StatusOK, preferencesDTO{Interests: preferences.DefaultInterests})
			return
		}
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, preferencesDTO{
		Interests:           prefs.GetInterests(),
		NotificationEmail:   prefs.NotificationEmail,
		NotificationEnabled: prefs.NotificationEnabled,
		SummaryTime:         prefs.SummaryTime,
		LearningTime:        prefs.LearningTime,
		InvestmentCheckTime: prefs.InvestmentCheckTime,
		Timezone:            prefs.Timezone,
		Theme:               prefs.Theme,
	})
}

func (h *Handler) putPreferences(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID              uuid.UUID `json:"userId"`
		Interests           []string  `json:"interests"`
		NotificationEmail   *string   `json:"notificationEmail"`
		NotificationEnabled *bool     `json:"notificationEnabled"`
		SummaryTime         *string   `json:"summaryTime"`
		LearningTime        *string   `json:"learningTime"`
		InvestmentCheckTime *string   `json:"investmentCheckTime"`
		Timezone            *string   `json:"timezone"`
		Theme               *string   `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == uuid.Nil {
		h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "userId is required"))
		return
	}

	prefs, err := h.prefs.GetByUser(r.Context(), body.UserID)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			h.respondError(w, err)
			return
		}
		prefs = &preferences.Preferences{ID: uuid.New(), UserID: body.UserID, NotificationEnabled: true}
	}

	if body.Interests != nil {
		if err := prefs.SetInterests(body.Interests); err != nil {
			h.respondError(w, errors.Wrap(errors.ErrInvalidInput, "invalid interests"))
			return
		}
	}
	if body.NotificationEmail != nil {
		prefs.NotificationEmail = *body.NotificationEmail
	}
	if body.NotificationEnabled != nil {
		prefs.NotificationEnabled = *body.NotificationEnabled
	}
	if body.SummaryTime != nil {
		prefs.SummaryTime = *body.SummaryTime
	}
	if body.LearningTime != nil {
		prefs.LearningTime = *body.LearningTime
	}
	if body.InvestmentCheckTime != nil {
		prefs.InvestmentCheckTime = *body.InvestmentCheckTime
	}
	if body.Timezone != nil {
		prefs.Timezone = *body.Timezone
	}
	if body.Theme != nil {
		prefs.Theme = *body.Theme
	}

	if err := h.prefs.Upsert(r.Context(), prefs); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx := r.Context()

	articleCount, err := h.articles.CountByUser(ctx, userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	summaries, err := h.summaries.ListRecent(ctx, userID, 7)
	if err != nil {
		h.respondError(w, err)
		return
	}
	lessons, err := h.lessons.ListByUser(ctx, userID, 1)
	if err != nil {
		h.respondError(w, err)
		return
	}
	holdings, err := h.holdings.ListByUser(ctx, userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	active, err := h.signals.ListActive(ctx, userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	unread, err := h.messages.ListUnread(ctx, userID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int{
		"articlesCount":       articleCount,
		"summariesCount":      len(summaries),
		"learningCount":       len(lessons),
		"portfolioCount":      len(holdings),
		"activeSignalsCount":  len(active),
		"unreadMessagesCount": len(unread),
	})
}

func userIDParam(r *http.Request) (uuid.UUID, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return uuid.Nil, errors.Wrap(errors.ErrInvalidInput, "user_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(errors.ErrInvalidInput, "user_id must be a uuid")
	}
	return id, nil
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Errorw("failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, errors.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.log.Errorw("request failed", "error", err)
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}
