package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gymleadhub/atlas-agent/internal/core"
	"github.com/gymleadhub/atlas-agent/internal/store"
)

// ScheduleFollowup creates a scheduled task for the agent to pick up later.
type ScheduleFollowup struct {
	DB *store.DB
}

func (t *ScheduleFollowup) Name() string     { return "schedule_followup" }
func (t *ScheduleFollowup) Category() string { return "tasks" }
func (t *ScheduleFollowup) Description() string {
	return "Schedule a follow-up for a later time, for example nudging a lead who has not replied."
}

func (t *ScheduleFollowup) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"due_at": map[string]any{
				"type":        "string",
				"description": "When to follow up, RFC 3339 (e.g. 2026-09-01T10:00:00Z)",
			},
			"note": map[string]any{
				"type":        "string",
				"description": "What the follow-up is about",
			},
		},
		"required": []string{"due_at", "note"},
	}
}

func (t *ScheduleFollowup) Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error) {
	dueStr, err := RequireString(args, "due_at")
	if err != nil {
		return nil, err
	}
	note, err := RequireString(args, "note")
	if err != nil {
		return nil, err
	}
	dueAt, err := time.Parse(time.RFC3339, dueStr)
	if err != nil {
		return nil, fmt.Errorf("%w: due_at must be RFC 3339", core.ErrInvalidArgument)
	}
	if dueAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: due_at is in the past", core.ErrInvalidArgument)
	}

	payload, err := json.Marshal(map[string]string{"note": note})
	if err != nil {
		return nil, err
	}
	taskID, err := t.DB.CreateTask(ctx, store.ScheduledTask{
		OrganizationID: toolCtx.OrganizationID,
		AgentID:        toolCtx.AgentID,
		ConversationID: toolCtx.ConversationID,
		Title:          note,
		Payload:        string(payload),
		DueAt:          dueAt,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"task_id": taskID,
		"due_at":  dueAt.UTC().Format(time.RFC3339),
		"note":    note,
	}, nil
}
