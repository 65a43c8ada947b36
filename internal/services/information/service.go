// Package information implements the daily digest agent: it pulls items
// from the configured public sources, classifies each against the user's
// interests, persists the articles and writes a summary for today.
package information

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"alpha/internal/adapters/ai"
	"alpha/internal/adapters/sources"
	"alpha/internal/domain/article"
	"alpha/internal/domain/execution"
	"alpha/internal/domain/message"
	"alpha/internal/domain/preferences"
	"alpha/internal/domain/summary"
	"alpha/internal/metrics"
	"alpha/internal/services/agentrun"
	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

// StorySource feeds the agent raw items from a story listing
type StorySource interface {
	FetchTopStories(ctx context.Context) ([]sources.Item, error)
}

// PostSource feeds the agent product launches; it may be unconfigured
type PostSource interface {
	Configured() bool
	FetchPosts(ctx context.Context) ([]sources.Item, error)
}

// Service runs the information agent
type Service struct {
	chat      ai.ChatProvider
	stories   StorySource
	posts     PostSource
	articles  article.Repository
	summaries summary.Repository
	messages  message.Repository
	prefs     preferences.Repository
	runner    *agentrun.Runner
	log       *logger.Logger
}

func NewService(
	chat ai.ChatProvider,
	stories StorySource,
	posts PostSource,
	articles article.Repository,
	summaries summary.Repository,
	messages message.Repository,
	prefs preferences.Repository,
	runner *agentrun.Runner,
) *Service {
	return &Service{
		chat:      chat,
		stories:   stories,
		posts:     posts,
		articles:  articles,
		summaries: summaries,
		messages:  messages,
		prefs:     prefs,
		runner:    runner,
		log:       logger.Get().With("component", "information_agent"),
	}
}

// Trigger starts an asynchronous run and returns its id
func (s *Service) Trigger(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.runner.Start(ctx, userID, execution.AgentInformation, func(ctx context.Context) (agentrun.Result, error) {
		return s.run(ctx, userID)
	})
}

type classifiedItem struct {
	article.Article
	score float64
}

func (s *Service) run(ctx context.Context, userID uuid.UUID) (agentrun.Result, error) {
	var res agentrun.Result

	interests, err := s.userInterests(ctx, userID)
	if err != nil {
		return res, err
	}

	items := s.fetchAll(ctx)
	res.ItemsProcessed = len(items)
	s.log.Infow("fetched items", "user_id", userID, "count", len(items))

	classified := make([]classifiedItem, 0, len(items))
	for _, item := range items {
		cls := s.classify(ctx, item, interests)

		a := article.Article{
			ID:             uuid.New(),
			UserID:         userID,
			Title:          item.Title,
			Description:    item.Description,
			URL:            item.URL,
			ImageURL:       item.ImageURL,
			Source:         item.Source,
			Category:       cls.Category,
			RelevanceScore: cls.Score,
			PublishedAt:    item.PublishedAt,
		}
		if err := s.articles.Create(ctx, &a); err != nil {
			s.log.Errorw("failed to persist article", "title", item.Title, "error", err)
			res.ItemsFailed++
			continue
		}
		classified = append(classified, classifiedItem{Article: a, score: cls.Score})
	}

	digest := s.generateDigest(ctx, classified)

	today := time.Now().Format("2006-01-02")
	daily := summary.DailySummary{
		ID:      uuid.New(),
		UserID:  userID,
		Date:    today,
		Summary: digest,
	}
	if err := daily.SetTopArticleIDs(topArticleIDs(classified, 10)); err != nil {
		return res, errors.Wrap(err, "encode top article ids")
	}
	if err := s.summaries.Upsert(ctx, &daily); err != nil {
		return res, errors.Wrap(err, "persist daily summary")
	}

	msg := message.SystemMessage{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    message.TypeDailySummary,
		Title:   "📰 Daily Information Digest",
		Content: digest,
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return res, errors.Wrap(err, "persist system message")
	}

	return res, nil
}

func (s *Service) userInterests(ctx context.Context, userID uuid.UUID) ([]string, error) {
	prefs, err := s.prefs.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return preferences.DefaultInterests, nil
		}
		return nil, errors.Wrap(err, "load user preferences")
	}
	return prefs.GetInterests(), nil
}

// fetchAll gathers items from every source. A source failing wholesale
// is logged and skipped; the run continues with what the others return.
func (s *Service) fetchAll(ctx context.Context) []sources.Item {
	var items []sources.Item

	stories, err := s.stories.FetchTopStories(ctx)
	if err != nil {
		s.log.Errorw("story source fetch failed", "error", err)
		metrics.SourceFetches.WithLabelValues("hackernews", "error").Inc()
	} else {
		items = append(items, stories...)
		metrics.SourceFetches.WithLabelValues("hackernews", "success").Inc()
	}

	if !s.posts.Configured() {
		s.log.Infow("post source not configured, skipping")
		metrics.SourceFetches.WithLabelValues("producthunt", "skipped").Inc()
		return items
	}
	posts, err := s.posts.FetchPosts(ctx)
	if err != nil {
		s.log.Errorw("post source fetch failed", "error", err)
		metrics.SourceFetches.WithLabelValues("producthunt", "error").Inc()
		return items
	}
	metrics.SourceFetches.WithLabelValues("producthunt", "success").Inc()
	return append(items, posts...)
}

type classification struct {
	Category article.Category
	Score    float64
	Reason   string
}

var neutralClassification = classification{
	Category: article.CategoryOther,
	Score:    0.5,
	Reason:   "classification unavailable, defaults applied",
}

// classify asks the model to categorize one item. Any model or parse
// failure degrades to the neutral default so a flaky model never sinks
// the whole run.
func (s *Service) classify(ctx context.Context, item sources.Item, interests []string) classification {
	resp, err := s.chat.Chat(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: classifySystemPrompt},
			{Role: ai.RoleUser, Content: classifyPrompt(item, interests)},
		},
		Temperature: 0.2,
		MaxTokens:   300,
	})
	if err != nil {
		s.log.Warnw("classification call failed", "title", item.Title, "error", err)
		metrics.ModelCalls.WithLabelValues("information", "error").Inc()
		return neutralClassification
	}
	metrics.ModelCalls.WithLabelValues("information", "success").Inc()

	cls, err := parseClassification(resp.Content)
	if err != nil {
		s.log.Warnw("classification reply unparseable", "title", item.Title, "error", err)
		return neutralClassification
	}
	return cls
}

// parseClassification validates the model's reply. Fallbacks applied per
// field: unknown category becomes other, a missing score becomes 0.5 and
// any score is clamped into [0,1]. A reply that is not a JSON object at
// all is an error and the caller falls back to the neutral default.
func parseClassification(content string) (classification, error) {
	var raw struct {
		Category       string   `json:"category"`
		RelevanceScore *float64 `json:"relevanceScore"`
		Reason         string   `json:"reason"`
	}
	if err := json.Unmarshal([]byte(ai.ExtractJSON(content)), &raw); err != nil {
		return classification{}, errors.Wrap(errors.ErrMalformedReply, err.Error())
	}

	score := 0.5
	if raw.RelevanceScore != nil {
		score = clamp01(*raw.RelevanceScore)
	}
	return classification{
		Category: article.ParseCategory(raw.Category),
		Score:    score,
		Reason:   raw.Reason,
	}, nil
}

// generateDigest builds the daily summary text from the ten most
// relevant articles. On model failure it returns a fixed fallback; the
// run still succeeds with a degraded summary.
func (s *Service) generateDigest(ctx context.Context, items []classifiedItem) string {
	top := topByScore(items, 10)

	var sb strings.Builder
	for _, it := range top {
		fmt.Fprintf(&sb, "- [%s] %s (relevance: %.0f%%)\n", it.Category, it.Title, it.score*100)
	}

	resp, err := s.chat.Chat(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: digestPrompt(sb.String())},
		},
		Temperature: 0.5,
		MaxTokens:   800,
	})
	if err != nil {
		s.log.Errorw("digest generation failed", "error", err)
		metrics.ModelCalls.WithLabelValues("information", "error").Inc()
		return "Summary generation unavailable"
	}
	metrics.ModelCalls.WithLabelValues("information", "success").Inc()
	return resp.Content
}

func topByScore(items []classifiedItem, n int) []classifiedItem {
	sorted := make([]classifiedItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].score > sorted[j].score
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func topArticleIDs(items []classifiedItem, n int) []uuid.UUID {
	top := topByScore(items, n)
	ids := make([]uuid.UUID, 0, len(top))
	for _, it := range top {
		ids = append(ids, it.ID)
	}
	return ids
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
