package ai

import "context"

// MessageRole identifies the author of a chat message
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one role-tagged part of a model conversation
type Message struct {
	Role    MessageRole
	Content string
}

// ChatRequest describes a single completion request
type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// ChatResponse carries the primary completion content.
// Content may be plain text or a JSON-encoded string; parsing and
// validating it is the caller's responsibility.
type ChatResponse struct {
	Content string
	Model   string
}

// ChatProvider defines the contract for language model access.
// Implementations surface network and non-2xx failures as errors;
// malformed content inside a successful reply is not detected here.
type ChatProvider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
