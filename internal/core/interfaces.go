package core

import "context"

// ChatOptions are per-call model parameters, taken from the Agent config.
type ChatOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// LLMClient abstracts the hosted chat-completion API.
type LLMClient interface {
	ChatCompletion(ctx context.Context, messages []Message, opts ChatOptions) (*ChatResult, error)
	ChatCompletionWithTools(ctx context.Context, messages []Message, tools []ToolDefinition, opts ChatOptions) (*ChatResult, error)
}
