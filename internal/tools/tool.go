// Package tools provides the tool framework and handler implementations for
// the agent.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gymleadhub/atlas-agent/internal/core"
)

// Tool is the interface all agent tools implement.
type Tool interface {
	// Name returns the tool identifier used in function calls.
	Name() string
	// Description returns a human-readable description for the LLM.
	Description() string
	// Category groups tools for listing (booking, clients, revenue, tasks).
	Category() string
	// Parameters returns the JSON Schema for tool arguments.
	Parameters() map[string]any
	// Execute runs the tool. toolCtx carries the organization scope; every
	// query a handler issues must filter by toolCtx.OrganizationID.
	Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error)
}

// Result is the outcome of one tool execution, shaped for the model. A
// failed execution is data, not a Go error: the model reads Error and
// recovers or rephrases.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Registry manages tool registration and execution.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool. Later registrations with the same name win.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// All returns all registered tools ordered by category then name.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category() != out[j].Category() {
			return out[i].Category() < out[j].Category()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Definitions returns tool definitions in the chat API format. When allowed
// is non-nil, only the named tools are included.
func (r *Registry) Definitions(allowed []string) []core.ToolDefinition {
	var allowSet map[string]bool
	if allowed != nil {
		allowSet = make(map[string]bool, len(allowed))
		for _, name := range allowed {
			allowSet[name] = true
		}
	}
	var out []core.ToolDefinition
	for _, tool := range r.All() {
		if allowSet != nil && !allowSet[tool.Name()] {
			continue
		}
		out = append(out, core.ToolDefinition{
			Type: "function",
			Function: core.FunctionSpec{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
			Category: tool.Category(),
		})
	}
	return out
}

// ExecuteTool runs a tool by name. It never returns an error or panics:
// unknown tools and handler failures come back as failed Results so the
// agent loop can hand them to the model.
func (r *Registry) ExecuteTool(ctx context.Context, name string, args map[string]any, toolCtx core.ToolContext) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tool panicked", "tool", name, "panic", p)
			res = Result{Success: false, Error: fmt.Sprintf("tool %s failed", name)}
		}
	}()

	tool, ok := r.Get(name)
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name, "org", toolCtx.OrganizationID)
		return Result{Success: false, Error: "tool not found"}
	}
	data, err := tool.Execute(ctx, args, toolCtx)
	if err != nil {
		r.logger.Warn("tool failed", "tool", name, "org", toolCtx.OrganizationID, "error", err)
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, Data: data}
}

// GetString extracts a string argument with a default.
func GetString(args map[string]any, key, defaultVal string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

// RequireString extracts a mandatory non-empty string argument.
func RequireString(args map[string]any, key string) (string, error) {
	s := GetString(args, key, "")
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", core.ErrInvalidArgument, key)
	}
	return s, nil
}

// GetInt extracts an int argument with a default. JSON numbers arrive as
// float64.
func GetInt(args map[string]any, key string, defaultVal int) int {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return defaultVal
}

// GetBool extracts a bool argument with a default.
func GetBool(args map[string]any, key string, defaultVal bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
