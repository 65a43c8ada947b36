package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
)

type fakeTrigger struct {
	runID uuid.UUID
	err   error
}

func (f *fakeTrigger) Trigger(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return f.runID, f.err
}

type fakeRunRepo struct {
	runs map[uuid.UUID]*execution.Run
	list []execution.Run
}

func (f *fakeRunRepo) Create(ctx context.Context, r *execution.Run) error { return nil }
func (f *fakeRunRepo) Finish(ctx context.Context, r *execution.Run) error { return nil }
func (f *fakeRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*execution.Run, error) {
	if r, ok := f.runs[id]; ok {
		return r, nil
	}
	return nil, errors.ErrNotFound
}
func (f *fakeRunRepo) ListByUserAndAgent(ctx context.Context, userID uuid.UUID, agent execution.Agent, limit int) ([]execution.Run, error) {
	return f.list, nil
}

type fakeArticleRepo struct{ articles []article.Article }

func (f *fakeArticleRepo) Create(ctx context.Context, a *article.Article) error { return nil }
func (f *fakeArticleRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]article.Article, error) {
	return f.articles, nil
}
func (f *fakeArticleRepo) ListByCategory(ctx context.Context, userID uuid.UUID, c article.Category, limit int) ([]article.Article, error) {
	var out []article.Article
	for _, a := range f.articles {
		if a.Category == c {
			out = append(out, a)
		}
	}
	return out, nil
}
func (f *fakeArticleRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(f.articles), nil
}

type fakeSummaryRepo struct{ summaries []summary.DailySummary }

func (f *fakeSummaryRepo) Upsert(ctx context.Context, s *summary.DailySummary) error { return nil }
func (f *fakeSummaryRepo) ListRecent(ctx context.Context, userID uuid.UUID, days int) ([]summary.DailySummary, error) {
	return f.summaries, nil
}

type fakeLessonRepo struct {
	lessons   []learning.Content
	completed []uuid.UUID
}

func (f *fakeLessonRepo) Create(ctx context.Context, c *learning.Content) error { return nil }
func (f *fakeLessonRepo) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*learning.Content, error) {
	return nil, errors.ErrNotFound
}
func (f *fakeLessonRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]learning.Content, error) {
	return f.lessons, nil
}
func (f *fakeLessonRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	f.completed = append(f.completed, id)
	return nil
}

type fakePortfolioRepo struct {
	items   []portfolio.Item
	created []*portfolio.Item
}

func (f *fakePortfolioRepo) Create(ctx context.Context, item *portfolio.Item) error {
	cp := *item
	f.created = append(f.created, &cp)
	return nil
}
func (f *fakePortfolioRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]portfolio.Item, error) {
	return f.items, nil
}
func (f *fakePortfolioRepo) UpdatePrice(ctx context.Context, item *portfolio.Item) error { return nil }

type fakeSignalRepo struct {
	signals  []signal.Signal
	actioned []uuid.UUID
}

func (f *fakeSignalRepo) Create(ctx context.Context, s *signal.Signal) error { return nil }
func (f *fakeSignalRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]signal.Signal, error) {
	return f.signals, nil
}
func (f *fakeSignalRepo) ListActive(ctx context.Context, userID uuid.UUID) ([]signal.Signal, error) {
	return f.signals, nil
}
func (f *fakeSignalRepo) MarkActioned(ctx context.Context, id uuid.UUID) error {
	f.actioned = append(f.actioned, id)
	return nil
}

type fakeTradeRepo struct{ created []*trade.Record }

func (f *fakeTradeRepo) Create(ctx context.Context, r *trade.Record) error {
	cp := *r
	f.created = append(f.created, &cp)
	return nil
}
func (f *fakeTradeRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]trade.Record, error) {
	return nil, nil
}

type fakeMessageRepo struct {
	messages []message.SystemMessage
	read     []uuid.UUID
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *message.SystemMessage) error { return nil }
func (f *fakeMessageRepo) ListUnread(ctx context.Context, userID uuid.UUID) ([]message.SystemMessage, error) {
	return f.messages, nil
}
func (f *fakeMessageRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	f.read = append(f.read, id)
	return nil
}

type fakePrefsRepo struct {
	prefs    *preferences.Preferences
	upserted []*preferences.Preferences
}

func (f *fakePrefsRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*preferences.Preferences, error) {
	if f.prefs == nil {
		return nil, errors.ErrNotFound
	}
	return f.prefs, nil
}
func (f *fakePrefsRepo) Upsert(ctx context.Context, p *preferences.Preferences) error {
	cp := *p
	f.upserted = append(f.upserted, &cp)
	return nil
}

type fixture struct {
	handler  *Handler
	triggers map[execution.Agent]AgentTrigger
	runs     *fakeRunRepo
	articles *fakeArticleRepo
	lessons  *fakeLessonRepo
	holdings *fakePortfolioRepo
	signals  *fakeSignalRepo
	trades   *fakeTradeRepo
	messages *fakeMessageRepo
	prefs    *fakePrefsRepo
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		triggers: map[execution.Agent]AgentTrigger{},
		runs:     &fakeRunRepo{runs: map[uuid.UUID]*execution.Run{}},
		articles: &fakeArticleRepo{},
		lessons:  &fakeLessonRepo{},
		holdings: &fakePortfolioRepo{},
		signals:  &fakeSignalRepo{},
		trades:   &fakeTradeRepo{},
		messages: &fakeMessageRepo{},
		prefs:    &fakePrefsRepo{},
	}
	f.handler = NewHandler(
		f.triggers, f.runs, f.articles, &fakeSummaryRepo{}, f.lessons,
		f.holdings, f.signals, f.trades, f.messages, f.prefs,
	)
	f.server = httptest.NewServer(f.handler.Routes())
	t.Cleanup(f.server.Close)
	return f
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func TestTriggerAgent(t *testing.T) {
	f := newFixture(t)
	runID := uuid.New()
	f.triggers[execution.AgentInformation] = &fakeTrigger{runID: runID}

	resp, body := doJSON(t, http.MethodPost,
		f.server.URL+"/agents/information/runs",
		`{"userId":"`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, runID.String(), body["runId"])
	assert.Equal(t, "running", body["status"])
}

func TestTriggerAgent_UnknownAgent(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, http.MethodPost,
		f.server.URL+"/agents/astrology/runs",
		`{"userId":"`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown agent")
}

func TestTriggerAgent_MissingUser(t *testing.T) {
	f := newFixture(t)
	f.triggers[execution.AgentLearning] = &fakeTrigger{runID: uuid.New()}

	resp, _ := doJSON(t, http.MethodPost, f.server.URL+"/agents/learning/runs", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRun(t *testing.T) {
	f := newFixture(t)
	finished := time.Now()
	run := &execution.Run{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Agent:          execution.AgentInvestment,
		Status:         execution.StatusSuccess,
		ItemsProcessed: 3,
		StartedAt:      time.Now().Add(-time.Minute),
		FinishedAt:     &finished,
	}
	f.runs.runs[run.ID] = run

	resp, body := doJSON(t, http.MethodGet, f.server.URL+"/runs/"+run.ID.String(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(3), body["itemsProcessed"])
}

func TestGetRun_NotFound(t *testing.T) {
	f := newFixture(t)

	resp, _ := doJSON(t, http.MethodGet, f.server.URL+"/runs/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListArticles_RequiresUser(t *testing.T) {
	f := newFixture(t)

	resp, _ := doJSON(t, http.MethodGet, f.server.URL+"/articles", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListArticles_CategoryFilter(t *testing.T) {
	f := newFixture(t)
	f.articles.articles = []article.Article{
		{ID: uuid.New(), Title: "AI paper", Category: article.CategoryAIBreakthrough},
		{ID: uuid.New(), Title: "New todo app", Category: article.CategoryProductivityTool},
	}

	req, err := http.NewRequest(http.MethodGet,
		f.server.URL+"/articles?user_id="+uuid.NewString()+"&category=ai_breakthrough", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var articles []articleDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "AI paper", articles[0].Title)
}

func TestCompleteLesson(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	resp, _ := doJSON(t, http.MethodPost, f.server.URL+"/learning/"+id.String()+"/complete", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []uuid.UUID{id}, f.lessons.completed)
}

func TestRecordTrade_ComputesTotal(t *testing.T) {
	f := newFixture(t)

	resp, _ := doJSON(t, http.MethodPost, f.server.URL+"/trades",
		`{"userId":"`+uuid.NewString()+`","symbol":"bitcoin","assetType":"crypto","tradeType":"buy","quantity":2,"price":150.5}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, f.trades.created, 1)
	assert.Equal(t, "301", f.trades.created[0].TotalAmount.String())
	assert.Equal(t, trade.TypeBuy, f.trades.created[0].TradeType)
}

func TestRecordTrade_RejectsBadDirection(t *testing.T) {
	f := newFixture(t)

	resp, _ := doJSON(t, http.MethodPost, f.server.URL+"/trades",
		`{"userId":"`+uuid.NewString()+`","symbol":"bitcoin","tradeType":"short","quantity":1,"price":10}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.trades.created)
}

func TestAddHolding(t *testing.T) {
	f := newFixture(t)

	resp, _ := doJSON(t, http.MethodPost, f.server.URL+"/portfolio",
		`{"userId":"`+uuid.NewString()+`","symbol":"ethereum","assetType":"crypto","quantity":2,"entryPrice":1800}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, f.holdings.created, 1)
	item := f.holdings.created[0]
	assert.Equal(t, "ethereum", item.Symbol)
	assert.Equal(t, portfolio.AssetCrypto, item.AssetType)
	assert.Equal(t, "1800", item.CurrentPrice.String())
	assert.Equal(t, "3600", item.TotalValue.String())
	assert.True(t, item.GainLoss.IsZero())
}

func TestAddHolding_RejectsUnknownAssetType(t *testing.T) {
	f := newFixture(t)

	resp, _ := doJSON(t, http.MethodPost, f.server.URL+"/portfolio",
		`{"userId":"`+uuid.NewString()+`","symbol":"gold","assetType":"commodity","quantity":1,"entryPrice":5}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.holdings.created)
}

func TestActionSignal(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	resp, _ := doJSON(t, http.MethodPost, f.server.URL+"/signals/"+id.String()+"/action", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []uuid.UUID{id}, f.signals.actioned)
}

func TestActionSignal_InvalidID(t *testing.T) {
	f := newFixture(t)

	resp, _ := doJSON(t, http.MethodPost, f.server.URL+"/signals/not-a-uuid/action", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.signals.actioned)
}

func TestMarkMessageRead(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	resp, _ := doJSON(t, http.MethodPost, f.server.URL+"/messages/"+id.String()+"/read", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []uuid.UUID{id}, f.messages.read)
}

func TestGetPreferences_DefaultsWhenUnset(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, http.MethodGet,
		f.server.URL+"/preferences?user_id="+uuid.NewString(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{"AI", "Technology", "Productivity"}, body["interests"])
}

func TestPutPreferences_CreatesRow(t *testing.T) {
	f := newFixture(t)

	resp, _ := doJSON(t, http.MethodPut, f.server.URL+"/preferences",
		`{"userId":"`+uuid.NewString()+`","interests":["Rust","Chess"],"timezone":"Europe/Berlin"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, f.prefs.upserted, 1)
	saved := f.prefs.upserted[0]
	assert.Equal(t, []string{"Rust", "Chess"}, saved.GetInterests())
	assert.Equal(t, "Europe/Berlin", saved.Timezone)
}

func TestStatusCounts(t *testing.T) {
	f := newFixture(t)
	f.articles.articles = []article.Article{{ID: uuid.New()}, {ID: uuid.New()}}
	f.messages.messages = []message.SystemMessage{{ID: uuid.New()}}

	resp, body := doJSON(t, http.MethodGet,
		f.server.URL+"/status?user_id="+uuid.NewString(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["articlesCount"])
	assert.Equal(t, float64(1), body["unreadMessagesCount"])
}
