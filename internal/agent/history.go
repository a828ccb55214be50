package agent

import (
	"encoding/json"
	"fmt"

	"github.com/gymleadhub/atlas-agent/internal/core"
	"github.com/gymleadhub/atlas-agent/internal/store"
)

// Persisted rows never use role "tool": a turn's tool calls and results are
// folded into the assistant row as JSON. ExpandHistory re-creates the wire
// shape the chat API expects, with every tool_call immediately followed by
// its result.

// ExpandHistory converts stored rows into wire-format messages.
func ExpandHistory(rows []store.Message) ([]core.Message, error) {
	var out []core.Message
	for _, row := range rows {
		if row.Role != core.RoleAssistant || row.ToolCalls == "" {
			out = append(out, core.Message{Role: row.Role, Content: row.Content})
			continue
		}

		var calls []core.ToolCall
		if err := json.Unmarshal([]byte(row.ToolCalls), &calls); err != nil {
			return nil, fmt.Errorf("decoding tool_calls for message %s: %w", row.ID, err)
		}
		var results []core.ToolResult
		if row.ToolResults != "" {
			if err := json.Unmarshal([]byte(row.ToolResults), &results); err != nil {
				return nil, fmt.Errorf("decoding tool_results for message %s: %w", row.ID, err)
			}
		}
		byCallID := make(map[string]core.ToolResult, len(results))
		for _, r := range results {
			byCallID[r.ToolCallID] = r
		}

		out = append(out, core.Message{Role: core.RoleAssistant, ToolCalls: calls})
		for _, call := range calls {
			result, ok := byCallID[call.ID]
			content := result.Content
			if !ok {
				content = `{"success":false,"error":"result missing"}`
			}
			out = append(out, core.Message{
				Role:       core.RoleTool,
				Content:    content,
				ToolCallID: call.ID,
			})
		}
		if row.Content != "" {
			out = append(out, core.Message{Role: core.RoleAssistant, Content: row.Content})
		}
	}
	return out, nil
}

// FoldExchange encodes a turn's accumulated tool calls and results for the
// assistant row. Empty slices encode as "" so the columns stay NULL.
func FoldExchange(calls []core.ToolCall, results []core.ToolResult) (toolCallsJSON, toolResultsJSON string, err error) {
	if len(calls) == 0 {
		return "", "", nil
	}
	cb, err := json.Marshal(calls)
	if err != nil {
		return "", "", fmt.Errorf("encoding tool_calls: %w", err)
	}
	rb, err := json.Marshal(results)
	if err != nil {
		return "", "", fmt.Errorf("encoding tool_results: %w", err)
	}
	return string(cb), string(rb), nil
}
