package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymleadhub/atlas-agent/internal/core"
	"github.com/gymleadhub/atlas-agent/internal/store"
)

func TestExpandHistoryPlainMessages(t *testing.T) {
	rows := []store.Message{
		{Role: core.RoleUser, Content: "hi"},
		{Role: core.RoleAssistant, Content: "hello"},
	}
	out, err := ExpandHistory(rows)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "hi", out[0].Content)
	assert.Equal(t, core.RoleAssistant, out[1].Role)
}

func TestExpandHistoryUnfoldsToolExchange(t *testing.T) {
	calls := []core.ToolCall{core.NewToolCall("call_1", "get_revenue", `{"start_date":"2026-08-01","end_date":"2026-08-31"}`)}
	results := []core.ToolResult{{ToolCallID: "call_1", Content: `{"success":true,"data":{"total":100}}`}}
	callsJSON, resultsJSON, err := FoldExchange(calls, results)
	require.NoError(t, err)

	rows := []store.Message{
		{Role: core.RoleUser, Content: "revenue?"},
		{ID: "m2", Role: core.RoleAssistant, Content: "It was £100.", ToolCalls: callsJSON, ToolResults: resultsJSON},
	}
	out, err := ExpandHistory(rows)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, core.RoleUser, out[0].Role)

	assert.Equal(t, core.RoleAssistant, out[1].Role)
	require.Len(t, out[1].ToolCalls, 1)
	assert.Equal(t, "get_revenue", out[1].ToolCalls[0].Function.Name)

	assert.Equal(t, core.RoleTool, out[2].Role)
	assert.Equal(t, "call_1", out[2].ToolCallID)
	assert.Contains(t, out[2].Content, `"total":100`)

	assert.Equal(t, core.RoleAssistant, out[3].Role)
	assert.Equal(t, "It was £100.", out[3].Content)
}

func TestExpandHistorySynthesizesMissingResult(t *testing.T) {
	callsJSON, _, err := FoldExchange(
		[]core.ToolCall{core.NewToolCall("call_9", "book_class", `{}`)},
		[]core.ToolResult{},
	)
	require.NoError(t, err)

	rows := []store.Message{{ID: "m1", Role: core.RoleAssistant, ToolCalls: callsJSON}}
	out, err := ExpandHistory(rows)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, core.RoleTool, out[1].Role)
	assert.Contains(t, out[1].Content, "result missing")
}

func TestFoldExchangeEmpty(t *testing.T) {
	callsJSON, resultsJSON, err := FoldExchange(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, callsJSON)
	assert.Empty(t, resultsJSON)
}
