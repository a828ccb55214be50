// Package agent runs the model tool-call loop for one conversation turn.
package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gymleadhub/atlas-agent/internal/config"
	"github.com/gymleadhub/atlas-agent/internal/core"
	"github.com/gymleadhub/atlas-agent/internal/knowledge"
	"github.com/gymleadhub/atlas-agent/internal/store"
	"github.com/gymleadhub/atlas-agent/internal/tools"
)

// ExecuteRequest is one inbound user turn.
type ExecuteRequest struct {
	OrganizationID string
	AgentID        string
	ConversationID string // empty = start a new conversation
	UserID         string
	Message        string
}

// ExecuteResult is the outcome of a turn. Failed turns carry Error and leave
// Response empty.
type ExecuteResult struct {
	Success        bool       `json:"success"`
	Response       string     `json:"response,omitempty"`
	ConversationID string     `json:"conversation_id,omitempty"`
	Error          string     `json:"error,omitempty"`
	ToolsUsed      []string   `json:"tools_used,omitempty"`
	Iterations     int        `json:"iterations"`
	Usage          core.Usage `json:"usage"`
}

// Orchestrator drives the model tool-call loop.
type Orchestrator struct {
	DB        *store.DB
	Client    core.LLMClient
	Registry  *tools.Registry
	Knowledge *knowledge.Provider
	Logger    *slog.Logger

	Config       config.OrchestratorConfig
	DefaultModel string

	// Clock is overridable in tests; defaults to time.Now.
	Clock func() time.Time

	agentCache *expirable.LRU[string, *store.Agent]
}

// NewOrchestrator wires an orchestrator with an agent cache.
func NewOrchestrator(db *store.DB, client core.LLMClient, registry *tools.Registry, kp *knowledge.Provider, cfg config.OrchestratorConfig, defaultModel string, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	size := cfg.AgentCacheSize
	if size <= 0 {
		size = 128
	}
	ttl := cfg.AgentCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Orchestrator{
		DB:           db,
		Client:       client,
		Registry:     registry,
		Knowledge:    kp,
		Logger:       logger,
		Config:       cfg,
		DefaultModel: defaultModel,
		Clock:        time.Now,
		agentCache:   expirable.NewLRU[string, *store.Agent](size, nil, ttl),
	}
}

// stepOutcome is what one model round decided.
type stepOutcome int

const (
	stepContinue stepOutcome = iota // tools executed, call the model again
	stepDone                        // final content produced
	stepAborted                     // unrecoverable error
)

type stepResult struct {
	outcome stepOutcome
	reply   string
	err     error
}

// turnState accumulates across the iterations of one Execute call.
type turnState struct {
	messages  []core.Message
	calls     []core.ToolCall
	results   []core.ToolResult
	toolsUsed []string
	usage     core.Usage
}

// Execute runs one user turn end to end: resolve the agent, replay history,
// loop the model over tool calls, persist the exchange.
func (o *Orchestrator) Execute(ctx context.Context, req ExecuteRequest) ExecuteResult {
	logger := o.Logger.With("org", req.OrganizationID, "agent", req.AgentID)

	agent, err := o.loadAgent(ctx, req.OrganizationID, req.AgentID)
	if err != nil {
		logger.Warn("agent resolution failed", "error", err)
		return ExecuteResult{Success: false, Error: err.Error()}
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID, err = o.DB.CreateConversation(ctx, req.OrganizationID, req.AgentID, req.UserID)
		if err != nil {
			return ExecuteResult{Success: false, Error: "creating conversation: " + err.Error()}
		}
	} else {
		if _, err := o.DB.GetConversation(ctx, req.OrganizationID, conversationID); err != nil {
			logger.Warn("conversation resolution failed", "conversation", conversationID, "error", err)
			return ExecuteResult{Success: false, Error: err.Error()}
		}
	}
	logger = logger.With("conversation", conversationID)

	history, err := o.loadHistory(ctx, conversationID)
	if err != nil {
		return ExecuteResult{Success: false, Error: err.Error()}
	}

	systemPrompt, err := o.buildPrompt(ctx, agent)
	if err != nil {
		return ExecuteResult{Success: false, Error: err.Error()}
	}

	state := &turnState{}
	state.messages = append(state.messages, core.Message{Role: core.RoleSystem, Content: systemPrompt})
	state.messages = append(state.messages, history...)
	state.messages = append(state.messages, core.Message{Role: core.RoleUser, Content: req.Message})

	toolCtx := core.ToolContext{
		OrganizationID: req.OrganizationID,
		AgentID:        agent.ID,
		ConversationID: conversationID,
		UserID:         req.UserID,
	}
	defs := o.Registry.Definitions(agent.AllowedTools)
	opts := core.ChatOptions{
		Model:       agent.Model,
		Temperature: agent.Temperature,
		MaxTokens:   agent.MaxTokens,
	}
	if opts.Model == "" {
		opts.Model = o.DefaultModel
	}

	maxIter := o.Config.MaxToolIterations
	if maxIter <= 0 {
		maxIter = 8
	}

	var reply string
	iterations := 0
	for i := 0; i < maxIter; i++ {
		iterations++
		step := o.step(ctx, state, defs, opts, toolCtx, logger)
		if step.outcome == stepAborted {
			logger.Error("turn aborted", "iteration", iterations, "error", step.err)
			return ExecuteResult{
				Success:        false,
				ConversationID: conversationID,
				Error:          step.err.Error(),
				Iterations:     iterations,
				Usage:          state.usage,
			}
		}
		if step.outcome == stepDone {
			reply = step.reply
			break
		}
	}
	if reply == "" {
		// Iteration cap exhausted while the model kept requesting tools.
		// Fall back to the most recent assistant text, if any.
		reply = lastAssistantContent(state.messages)
		if reply == "" {
			reply = "I wasn't able to finish that request. Could you rephrase or break it into smaller steps?"
		}
		logger.Warn("iteration cap reached", "iterations", iterations)
	}

	if err := o.persistExchange(ctx, req.OrganizationID, conversationID, req.Message, reply, opts.Model, state); err != nil {
		logger.Error("persisting exchange failed", "error", err)
		return ExecuteResult{
			Success:        false,
			ConversationID: conversationID,
			Error:          "saving conversation: " + err.Error(),
			Iterations:     iterations,
			Usage:          state.usage,
		}
	}

	logger.Info("turn complete",
		"iterations", iterations,
		"tools", len(state.calls),
		"tokens", state.usage.TotalTokens,
	)
	return ExecuteResult{
		Success:        true,
		Response:       reply,
		ConversationID: conversationID,
		ToolsUsed:      state.toolsUsed,
		Iterations:     iterations,
		Usage:          state.usage,
	}
}

// step runs one model round: call, then either finish with content or execute
// every requested tool and queue the results for the next round.
func (o *Orchestrator) step(ctx context.Context, state *turnState, defs []core.ToolDefinition, opts core.ChatOptions, toolCtx core.ToolContext, logger *slog.Logger) stepResult {
	res, err := o.Client.ChatCompletionWithTools(ctx, state.messages, defs, opts)
	if err != nil {
		return stepResult{outcome: stepAborted, err: err}
	}
	state.usage.Add(res.Usage)

	if len(res.ToolCalls) == 0 {
		if res.Content == "" {
			return stepResult{outcome: stepAborted, err: core.ErrEmptyResponse}
		}
		return stepResult{outcome: stepDone, reply: res.Content}
	}

	state.messages = append(state.messages, core.Message{
		Role:      core.RoleAssistant,
		Content:   res.Content,
		ToolCalls: res.ToolCalls,
	})

	// Every requested call gets exactly one result before the next round.
	for _, call := range res.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				logger.Warn("malformed tool arguments", "tool", call.Function.Name, "error", err)
				args = map[string]any{}
			}
		}
		result := o.Registry.ExecuteTool(ctx, call.Function.Name, args, toolCtx)

		content, err := json.Marshal(result)
		if err != nil {
			content = []byte(`{"success":false,"error":"unencodable tool result"}`)
		}
		text := tools.TruncateToolOutput(string(content), o.Config.ToolOutputMaxRunes)

		state.calls = append(state.calls, call)
		state.results = append(state.results, core.ToolResult{
			ToolCallID: call.ID,
			Content:    text,
			IsError:    !result.Success,
		})
		state.toolsUsed = append(state.toolsUsed, call.Function.Name)
		state.messages = append(state.messages, core.Message{
			Role:       core.RoleTool,
			Content:    text,
			ToolCallID: call.ID,
		})
	}
	return stepResult{outcome: stepContinue}
}

func (o *Orchestrator) loadAgent(ctx context.Context, orgID, agentID string) (*store.Agent, error) {
	key := orgID + "/" + agentID
	if a, ok := o.agentCache.Get(key); ok {
		if !a.Enabled {
			return nil, core.ErrAgentDisabled
		}
		return a, nil
	}
	a, err := o.DB.GetAgent(ctx, orgID, agentID)
	if err != nil {
		return nil, err
	}
	o.agentCache.Add(key, a)
	if !a.Enabled {
		return nil, core.ErrAgentDisabled
	}
	return a, nil
}

func (o *Orchestrator) loadHistory(ctx context.Context, conversationID string) ([]core.Message, error) {
	limit := o.Config.HistoryLimit
	if limit <= 0 {
		limit = 30
	}
	rows, err := o.DB.RecentMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}
	return ExpandHistory(rows)
}

func (o *Orchestrator) buildPrompt(ctx context.Context, agent *store.Agent) (string, error) {
	tz := time.UTC
	if org, err := o.DB.GetOrganization(ctx, agent.OrganizationID); err == nil {
		if loc, err := time.LoadLocation(org.Timezone); err == nil {
			tz = loc
		}
	}

	knowledgeContext := ""
	if o.Knowledge != nil {
		kc, err := o.Knowledge.Context(ctx, agent.OrganizationID)
		if err != nil {
			o.Logger.Warn("knowledge context failed", "org", agent.OrganizationID, "error", err)
		} else {
			knowledgeContext = kc
		}
	}
	return BuildSystemPrompt(agent.SystemPrompt, o.Clock(), tz, knowledgeContext), nil
}

// persistExchange writes the user row and the assistant row with the turn's
// tool activity folded in.
func (o *Orchestrator) persistExchange(ctx context.Context, orgID, conversationID, userMessage, reply, model string, state *turnState) error {
	if _, err := o.DB.AppendMessage(ctx, store.Message{
		ConversationID: conversationID,
		Role:           core.RoleUser,
		Content:        userMessage,
	}); err != nil {
		return err
	}

	toolCallsJSON, toolResultsJSON, err := FoldExchange(state.calls, state.results)
	if err != nil {
		return err
	}
	if _, err := o.DB.AppendMessage(ctx, store.Message{
		ConversationID: conversationID,
		Role:           core.RoleAssistant,
		Content:        reply,
		ToolCalls:      toolCallsJSON,
		ToolResults:    toolResultsJSON,
		Model:          model,
		TokensUsed:     state.usage.TotalTokens,
		CostUSD:        state.usage.CostUSD,
	}); err != nil {
		return err
	}
	return o.DB.TouchConversation(ctx, orgID, conversationID)
}

func lastAssistantContent(messages []core.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleAssistant && messages[i].Content != "" {
			return messages[i].Content
		}
	}
	return ""
}

// InvalidateAgent drops a cached agent after config changes.
func (o *Orchestrator) InvalidateAgent(orgID, agentID string) {
	o.agentCache.Remove(orgID + "/" + agentID)
}
