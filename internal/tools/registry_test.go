package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymleadhub/atlas-agent/internal/core"
)

type stubTool struct {
	name     string
	category string
	execute  func(ctx context.Context, args map[string]any, tc core.ToolContext) (any, error)
}

func (s *stubTool) Name() string               { return s.name }
func (s *stubTool) Description() string        { return "stub" }
func (s *stubTool) Category() string           { return s.category }
func (s *stubTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (s *stubTool) Execute(ctx context.Context, args map[string]any, tc core.ToolContext) (any, error) {
	return s.execute(ctx, args, tc)
}

func TestRegistryAllOrderedByCategoryThenName(t *testing.T) {
	r := NewRegistry(nil)
	noop := func(context.Context, map[string]any, core.ToolContext) (any, error) { return nil, nil }
	r.Register(&stubTool{name: "zebra", category: "booking", execute: noop})
	r.Register(&stubTool{name: "apple", category: "revenue", execute: noop})
	r.Register(&stubTool{name: "mango", category: "booking", execute: noop})

	var got []string
	for _, tool := range r.All() {
		got = append(got, tool.Name())
	}
	assert.Equal(t, []string{"mango", "zebra", "apple"}, got)
}

func TestRegistryDefinitionsFiltered(t *testing.T) {
	r := NewRegistry(nil)
	noop := func(context.Context, map[string]any, core.ToolContext) (any, error) { return nil, nil }
	r.Register(&stubTool{name: "a", category: "x", execute: noop})
	r.Register(&stubTool{name: "b", category: "x", execute: noop})

	defs := r.Definitions(nil)
	assert.Len(t, defs, 2)

	defs = r.Definitions([]string{"b"})
	require.Len(t, defs, 1)
	assert.Equal(t, "b", defs[0].Function.Name)

	// An empty (non-nil) allow list means no tools at all.
	assert.Empty(t, r.Definitions([]string{}))
}

func TestExecuteToolUnknownName(t *testing.T) {
	r := NewRegistry(nil)
	res := r.ExecuteTool(context.Background(), "nope", nil, core.ToolContext{OrganizationID: "org"})
	assert.False(t, res.Success)
	assert.Equal(t, "tool not found", res.Error)
}

func TestExecuteToolFoldsHandlerError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "boom", category: "x", execute: func(context.Context, map[string]any, core.ToolContext) (any, error) {
		return nil, errors.New("db unavailable")
	}})

	res := r.ExecuteTool(context.Background(), "boom", nil, core.ToolContext{OrganizationID: "org"})
	assert.False(t, res.Success)
	assert.Equal(t, "db unavailable", res.Error)
}

func TestExecuteToolRecoversPanic(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "panics", category: "x", execute: func(context.Context, map[string]any, core.ToolContext) (any, error) {
		panic("nil map write")
	}})

	res := r.ExecuteTool(context.Background(), "panics", nil, core.ToolContext{OrganizationID: "org"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "panics")
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"s":     "hello",
		"n":     float64(7), // JSON numbers decode to float64
		"b":     true,
		"wrong": 42,
	}
	assert.Equal(t, "hello", GetString(args, "s", "d"))
	assert.Equal(t, "d", GetString(args, "missing", "d"))
	assert.Equal(t, "d", GetString(args, "wrong", "d"))
	assert.Equal(t, 7, GetInt(args, "n", 0))
	assert.Equal(t, 3, GetInt(args, "missing", 3))
	assert.True(t, GetBool(args, "b", false))

	_, err := RequireString(args, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
