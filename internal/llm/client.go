// Package llm is an OpenAI-compatible chat-completions client.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gymleadhub/atlas-agent/internal/core"
)

// Pricing converts the API usage block into dollars. Values are USD per
// million tokens.
type Pricing struct {
	PromptPerMTok     float64
	CompletionPerMTok float64
}

// Client calls an OpenAI-compatible chat-completions API.
type Client struct {
	BaseURL string
	APIKey  string
	Pricing Pricing
	HTTP    *http.Client
}

var _ core.LLMClient = (*Client)(nil)

// NewClient creates a client for the given endpoint.
func NewClient(baseURL, apiKey string, pricing Pricing) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Pricing: pricing,
		HTTP:    &http.Client{Timeout: 120 * time.Second},
	}
}

// chatRequest is the request body for chat completions.
type chatRequest struct {
	Model       string                `json:"model"`
	Messages    []core.Message        `json:"messages"`
	Tools       []core.ToolDefinition `json:"tools,omitempty"`
	Temperature float64               `json:"temperature,omitempty"`
	MaxTokens   int                   `json:"max_tokens,omitempty"`
}

// chatResponse is the response from chat completions.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role      string          `json:"role"`
			Content   json.RawMessage `json:"content"`
			ToolCalls []core.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// parseContent parses API content that may be a string, null, or an array of
// parts (e.g. [{"type":"text","text":"..."}]).
func parseContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []map[string]interface{}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		if t, ok := p["text"].(string); ok {
			b.WriteString(t)
		}
	}
	return b.String()
}

// ChatCompletion sends messages without tool definitions.
func (c *Client) ChatCompletion(ctx context.Context, messages []core.Message, opts core.ChatOptions) (*core.ChatResult, error) {
	return c.complete(ctx, chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
}

// ChatCompletionWithTools sends messages with tool definitions; the reply may
// carry tool calls instead of (or alongside) content.
func (c *Client) ChatCompletionWithTools(ctx context.Context, messages []core.Message, tools []core.ToolDefinition, opts core.ChatOptions) (*core.ChatResult, error) {
	return c.complete(ctx, chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		Tools:       tools,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
}

func (c *Client) complete(ctx context.Context, body chatRequest) (*core.ChatResult, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("llm: API key not set")
	}
	if body.Model == "" {
		return nil, fmt.Errorf("llm: model not set")
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	// Exponential backoff retry for network errors and rate limits.
	var resp *http.Response
	var errDo error
	maxRetries := 3
	backoff := 1 * time.Second

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.APIKey)

		resp, errDo = c.HTTP.Do(req)
		if errDo != nil {
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			resp = nil
			continue
		}
		break
	}
	if errDo != nil {
		return nil, errDo
	}
	if resp == nil {
		return nil, fmt.Errorf("llm: request failed after retries")
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm: HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}
	var out chatResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return nil, fmt.Errorf("llm: decode: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("llm: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("llm: no choices in response")
	}

	choice := out.Choices[0]
	result := &core.ChatResult{
		Content:   parseContent(choice.Message.Content),
		ToolCalls: choice.Message.ToolCalls,
		Usage: core.Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}
	result.Usage.CostUSD = c.Pricing.Cost(result.Usage)
	return result, nil
}

// Cost computes the dollar cost of one call's usage.
func (p Pricing) Cost(u core.Usage) float64 {
	return float64(u.PromptTokens)*p.PromptPerMTok/1e6 +
		float64(u.CompletionTokens)*p.CompletionPerMTok/1e6
}
