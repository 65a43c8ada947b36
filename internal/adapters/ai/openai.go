package ai

import (
	"context"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"alpha/internal/adapters/config"
	"alpha/pkg/errors"
)

// Ensure OpenAIClient implements ChatProvider
var _ ChatProvider = (*OpenAIClient)(nil)

// OpenAIClient implements ChatProvider using the OpenAI chat completions API.
// Any OpenAI-compatible endpoint works via OPENAI_BASE_URL.
type OpenAIClient struct {
	client openai.Client
	cfg    config.AIConfig
}

// NewOpenAIClient creates a chat provider from config.
// A missing API key is not rejected here; the first Chat call fails instead.
func NewOpenAIClient(cfg config.AIConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

// Chat sends one completion request and returns the primary content
func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.Wrap(errors.ErrNotConfigured, "openai API key missing")
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.cfg.Model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.cfg.Temperature
	}
	params.Temperature = openai.Float(temperature)

	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "openai chat completion")
	}

	if len(completion.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrExternal, "openai returned no choices")
	}

	return &ChatResponse{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
	}, nil
}
