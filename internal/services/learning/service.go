// Package learning implements the daily lesson agent. The track rotates
// by day of week (web3, us_stocks, quantitative) and at most one lesson
// exists per user per calendar date.
package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"alpha/internal/adapters/ai"
	"alpha/internal/domain/execution"
	"alpha/internal/domain/learning"
	"alpha/internal/domain/message"
	"alpha/internal/metrics"
	"alpha/internal/services/agentrun"
	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

// Service runs the learning agent
type Service struct {
	chat     ai.ChatProvider
	lessons  learning.Repository
	messages message.Repository
	runner   *agentrun.Runner
	now      func() time.Time
	log      *logger.Logger
}

func NewService(
	chat ai.ChatProvider,
	lessons learning.Repository,
	messages message.Repository,
	runner *agentrun.Runner,
) *Service {
	return &Service{
		chat:     chat,
		lessons:  lessons,
		messages: messages,
		runner:   runner,
		now:      time.Now,
		log:      logger.Get().With("component", "learning_agent"),
	}
}

// Trigger starts an asynchronous run and returns its id
func (s *Service) Trigger(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.runner.Start(ctx, userID, execution.AgentLearning, func(ctx context.Context) (agentrun.Result, error) {
		return s.run(ctx, userID)
	})
}

func (s *Service) run(ctx context.Context, userID uuid.UUID) (agentrun.Result, error) {
	var res agentrun.Result

	now := s.now()
	today := now.Format("2006-01-02")
	category := learning.CategoryForDay(int(now.Weekday()))

	// Cheap pre-check; the insert below still handles the race.
	if _, err := s.lessons.GetByUserAndDate(ctx, userID, today); err == nil {
		return res, errors.Wrap(agentrun.ErrPreconditionNotMet, "lesson already exists for today")
	} else if !errors.Is(err, errors.ErrNotFound) {
		return res, errors.Wrap(err, "check existing lesson")
	}

	plan, err := s.generatePlan(ctx, category)
	if err != nil {
		// A lesson with no content is useless, so unlike the other
		// agents a bad model reply fails the whole run.
		return res, err
	}
	res.ItemsProcessed++

	content := learning.Content{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        today,
		Topic:       plan.Topic,
		Category:    category,
		Explanation: plan.Explanation,
		CaseStudy:   plan.CaseStudy,
		NextTopic:   plan.NextTopic,
	}
	if err := content.SetKeyPoints(plan.KeyPoints); err != nil {
		return res, errors.Wrap(err, "encode key points")
	}
	if err := content.SetResources(plan.Resources); err != nil {
		return res, errors.Wrap(err, "encode resources")
	}
	if err := s.lessons.Create(ctx, &content); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			// Lost the race against a concurrent run for the same day.
			return res, errors.Wrap(agentrun.ErrPreconditionNotMet, "lesson already created concurrently")
		}
		return res, errors.Wrap(err, "persist lesson")
	}

	recap := s.generateRecap(ctx, plan)

	msg := message.SystemMessage{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    message.TypeLearningTask,
		Title:   fmt.Sprintf("📚 Today's Lesson: %s", plan.Topic),
		Content: recap,
	}
	if err := msg.SetMetadata(map[string]interface{}{
		"category":  category,
		"keyPoints": plan.KeyPoints,
	}); err != nil {
		return res, errors.Wrap(err, "encode message metadata")
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return res, errors.Wrap(err, "persist system message")
	}

	return res, nil
}

type plan struct {
	Topic       string
	Explanation string
	CaseStudy   string
	KeyPoints   []string
	Resources   []learning.Resource
	NextTopic   string
}

// generatePlan asks the model for today's lesson. The reply must be a
// JSON object; a malformed reply is an error and fails the run.
func (s *Service) generatePlan(ctx context.Context, category learning.Category) (*plan, error) {
	resp, err := s.chat.Chat(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: planPrompt(category)},
		},
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		metrics.ModelCalls.WithLabelValues("learning", "error").Inc()
		return nil, errors.Wrap(err, "generate lesson plan")
	}
	metrics.ModelCalls.WithLabelValues("learning", "success").Inc()

	return parsePlan(resp.Content)
}

// parsePlan validates the model's reply. Field fallbacks: a missing
// topic becomes "Unknown topic", missing lists stay empty. A reply that
// is not a JSON object is a hard error.
func parsePlan(content string) (*plan, error) {
	var raw struct {
		Topic       string              `json:"topic"`
		Explanation string              `json:"explanation"`
		CaseStudy   string              `json:"caseStudy"`
		KeyPoints   []string            `json:"keyPoints"`
		Resources   []learning.Resource `json:"resources"`
		NextTopic   string              `json:"nextTopic"`
	}
	if err := json.Unmarshal([]byte(ai.ExtractJSON(content)), &raw); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedReply, err.Error())
	}

	if raw.Topic == "" {
		raw.Topic = "Unknown topic"
	}
	return &plan{
		Topic:       raw.Topic,
		Explanation: raw.Explanation,
		CaseStudy:   raw.CaseStudy,
		KeyPoints:   raw.KeyPoints,
		Resources:   raw.Resources,
		NextTopic:   raw.NextTopic,
	}, nil
}

// generateRecap produces the short notification text. Degrades to a
// fixed fallback on model failure.
func (s *Service) generateRecap(ctx context.Context, p *plan) string {
	resp, err := s.chat.Chat(ctx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: recapPrompt(p)},
		},
		Temperature: 0.5,
		MaxTokens:   400,
	})
	if err != nil {
		s.log.Errorw("recap generation failed", "topic", p.Topic, "error", err)
		metrics.ModelCalls.WithLabelValues("learning", "error").Inc()
		return "Lesson recap unavailable"
	}
	metrics.ModelCalls.WithLabelValues("learning", "success").Inc()
	return resp.Content
}

var categoryDescriptions = map[learning.Category]string{
	learning.CategoryWeb3:         "blockchain, cryptocurrencies, DeFi and other Web3 technology",
	learning.CategoryUSStocks:     "US stock market fundamentals, company analysis and investment strategy",
	learning.CategoryQuantitative: "quantitative investing, algorithmic trading and data analysis",
}

func planPrompt(category learning.Category) string {
	return fmt.Sprintf(`You are an investment education expert. Generate a beginner lesson about %s.

Return a JSON object with exactly these fields:
{
  "topic": "today's lesson topic",
  "explanation": "a detailed concept explanation (200-300 words)",
  "caseStudy": "a real-world case analysis (200-300 words)",
  "keyPoints": ["key point 1", "key point 2", "key point 3", "key point 4"],
  "resources": [
    {"title": "resource title", "url": "https://example.com", "type": "article|video|course"}
  ],
  "nextTopic": "a suggested follow-up topic"
}

Requirements:
1. Build from fundamentals toward advanced material
2. Include concrete examples
3. Resources must be real and high quality
4. Keep the language clear and accessible

Return only the JSON, nothing else.`, categoryDescriptions[category])
}

func recapPrompt(p *plan) string {
	var points strings.Builder
	for _, kp := range p.KeyPoints {
		fmt.Fprintf(&points, "- %s\n", kp)
	}
	return fmt.Sprintf(`Write a concise recap (at most 150 words) of today's lesson.

Topic: %s

Key points:
%s
Cover:
1. The core takeaways
2. Why they matter
3. How to apply them to real investing`, p.Topic, points.String())
}
