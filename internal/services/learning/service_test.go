package learning

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha/internal/adapters/ai"
	"alpha/internal/domain/learning"
	"alpha/internal/domain/message"
	"alpha/internal/services/agentrun"
	"alpha/pkg/errors"
)

type mockChat struct {
	chatFunc func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)
}

func (m *mockChat) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	return m.chatFunc(ctx, req)
}

type mockLessonRepo struct {
	byDate  map[string]*learning.Content
	created []*learning.Content

	createErr error
}

func newMockLessonRepo() *mockLessonRepo {
	return &mockLessonRepo{byDate: map[string]*learning.Content{}}
}

func (m *mockLessonRepo) Create(ctx context.Context, c *learning.Content) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := c.UserID.String() + "/" + c.Date
	if _, ok := m.byDate[key]; ok {
		return errors.ErrAlreadyExists
	}
	cp := *c
	m.byDate[key] = &cp
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockLessonRepo) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*learning.Content, error) {
	if c, ok := m.byDate[userID.String()+"/"+date]; ok {
		return c, nil
	}
	return nil, errors.ErrNotFound
}

func (m *mockLessonRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]learning.Content, error) {
	return nil, nil
}

func (m *mockLessonRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error { return nil }

type mockMessageRepo struct {
	created []*message.SystemMessage
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *message.SystemMessage) error {
	cp := *msg
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockMessageRepo) ListUnread(ctx context.Context, userID uuid.UUID) ([]message.SystemMessage, error) {
	return nil, nil
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, id uuid.UUID) error { return nil }

const validPlanReply = `{
  "topic": "Dollar-cost averaging",
  "explanation": "Invest a fixed amount on a schedule regardless of price.",
  "caseStudy": "An investor buying an index fund monthly through 2022.",
  "keyPoints": ["Reduces timing risk", "Builds discipline"],
  "resources": [{"title": "DCA basics", "url": "https://example.com/dca", "type": "article"}],
  "nextTopic": "Rebalancing"
}`

func newTestService(chat *mockChat, lessons *mockLessonRepo, messages *mockMessageRepo, now time.Time) *Service {
	svc := NewService(chat, lessons, messages, nil)
	svc.now = func() time.Time { return now }
	return svc
}

// A Monday; Weekday()=1 selects us_stocks from the rotation.
var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestRun_CreatesLessonAndMessage(t *testing.T) {
	chat := &mockChat{chatFunc: func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		if strings.HasPrefix(req.Messages[0].Content, "Write a concise recap") {
			return &ai.ChatResponse{Content: "Short recap."}, nil
		}
		return &ai.ChatResponse{Content: validPlanReply}, nil
	}}
	lessons := newMockLessonRepo()
	messages := &mockMessageRepo{}
	svc := newTestService(chat, lessons, messages, monday)
	userID := uuid.New()

	res, err := svc.run(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsProcessed)

	require.Len(t, lessons.created, 1)
	lesson := lessons.created[0]
	assert.Equal(t, "Dollar-cost averaging", lesson.Topic)
	assert.Equal(t, learning.CategoryUSStocks, lesson.Category)
	assert.Equal(t, "2026-03-02", lesson.Date)
	points, err := lesson.GetKeyPoints()
	require.NoError(t, err)
	assert.Equal(t, []string{"Reduces timing risk", "Builds discipline"}, points)
	resources, err := lesson.GetResources()
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "article", resources[0].Type)

	require.Len(t, messages.created, 1)
	msg := messages.created[0]
	assert.Equal(t, message.TypeLearningTask, msg.Type)
	assert.Equal(t, "📚 Today's Lesson: Dollar-cost averaging", msg.Title)
	assert.Equal(t, "Short recap.", msg.Content)
	assert.Contains(t, string(msg.Metadata), "us_stocks")
}

func TestRun_SecondRunSameDaySkips(t *testing.T) {
	chat := &mockChat{chatFunc: func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{Content: validPlanReply}, nil
	}}
	lessons := newMockLessonRepo()
	svc := newTestService(chat, lessons, &mockMessageRepo{}, monday)
	userID := uuid.New()

	_, err := svc.run(context.Background(), userID)
	require.NoError(t, err)

	_, err = svc.run(context.Background(), userID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, agentrun.ErrPreconditionNotMet))
	assert.Len(t, lessons.created, 1, "exactly one lesson per user per date")
}

func TestRun_ConcurrentInsertLosesRaceGracefully(t *testing.T) {
	chat := &mockChat{chatFunc: func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{Content: validPlanReply}, nil
	}}
	lessons := newMockLessonRepo()
	lessons.createErr = errors.ErrAlreadyExists
	svc := newTestService(chat, lessons, &mockMessageRepo{}, monday)

	_, err := svc.run(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, agentrun.ErrPreconditionNotMet),
		"a conflict insert maps to the skipped outcome, not a failure")
}

func TestRun_MalformedPlanFailsRun(t *testing.T) {
	chat := &mockChat{chatFunc: func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{Content: "I'd rather not produce JSON today."}, nil
	}}
	lessons := newMockLessonRepo()
	messages := &mockMessageRepo{}
	svc := newTestService(chat, lessons, messages, monday)

	_, err := svc.run(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedReply))
	assert.Empty(t, lessons.created)
	assert.Empty(t, messages.created)
}

func TestRun_RecapFailureDegrades(t *testing.T) {
	first := true
	chat := &mockChat{chatFunc: func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		if first {
			first = false
			return &ai.ChatResponse{Content: validPlanReply}, nil
		}
		return nil, errors.New("model unavailable")
	}}
	lessons := newMockLessonRepo()
	messages := &mockMessageRepo{}
	svc := newTestService(chat, lessons, messages, monday)

	_, err := svc.run(context.Background(), uuid.New())
	require.NoError(t, err, "a failed recap must not fail the run")
	require.Len(t, messages.created, 1)
	assert.Equal(t, "Lesson recap unavailable", messages.created[0].Content)
}

func TestParsePlan_TopicFallback(t *testing.T) {
	p, err := parsePlan(`{"explanation": "something"}`)
	require.NoError(t, err)
	assert.Equal(t, "Unknown topic", p.Topic)
	assert.Empty(t, p.KeyPoints)
}

func TestCategoryRotationAcrossWeek(t *testing.T) {
	want := map[time.Weekday]learning.Category{
		time.Sunday:    learning.CategoryWeb3,
		time.Monday:    learning.CategoryUSStocks,
		time.Tuesday:   learning.CategoryQuantitative,
		time.Wednesday: learning.CategoryWeb3,
		time.Thursday:  learning.CategoryUSStocks,
		time.Friday:    learning.CategoryQuantitative,
		time.Saturday:  learning.CategoryWeb3,
	}
	for day, category := range want {
		assert.Equal(t, category, learning.CategoryForDay(int(day)), "day %s", day)
	}
}
