package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Scheduled task statuses.
const (
	TaskPending   = "pending"
	TaskQueued    = "queued"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

// ScheduledTask is a deferred piece of agent work (follow-up nudge, reminder).
type ScheduledTask struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	AgentID        string     `json:"agent_id"`
	ConversationID string     `json:"conversation_id,omitempty"`
	Title          string     `json:"title"`
	Payload        string     `json:"payload,omitempty"` // JSON
	DueAt          time.Time  `json:"due_at"`
	Status         string     `json:"status"`
	LastError      string     `json:"last_error,omitempty"`
	QueuedAt       *time.Time `json:"queued_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CreateTask inserts a pending task and returns its id.
func (db *DB) CreateTask(ctx context.Context, t ScheduledTask) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO scheduled_tasks (id, organization_id, agent_id, conversation_id, title, payload, due_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 'pending')`,
		t.ID, t.OrganizationID, t.AgentID, nullIfEmpty(t.ConversationID), t.Title, nullIfEmpty(t.Payload), t.DueAt.UTC(),
	)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// ClaimDueTasks atomically moves due pending tasks to queued and returns them.
// The status guard in the UPDATE makes re-running the claim a no-op for rows
// already taken, so a second check in the same tick never double-queues.
func (db *DB) ClaimDueTasks(ctx context.Context, now time.Time, limit int) ([]ScheduledTask, error) {
	rows, err := db.QueryContext(ctx,
		`UPDATE scheduled_tasks
		 SET status = 'queued', queued_at = ?
		 WHERE id IN (
			SELECT id FROM scheduled_tasks
			WHERE status = 'pending' AND due_at <= ?
			ORDER BY due_at ASC LIMIT ?
		 )
		 RETURNING id, organization_id, agent_id, conversation_id, title, payload, due_at, status, last_error, queued_at, completed_at, created_at`,
		now.UTC(), now.UTC(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// CompleteTask marks a queued task completed.
func (db *DB) CompleteTask(ctx context.Context, taskID string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE scheduled_tasks SET status = 'completed', completed_at = ?, last_error = NULL WHERE id = ?`,
		time.Now().UTC(), taskID,
	)
	return err
}

// FailTask marks a queued task failed and records the error.
func (db *DB) FailTask(ctx context.Context, taskID, reason string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE scheduled_tasks SET status = 'failed', completed_at = ?, last_error = ? WHERE id = ?`,
		time.Now().UTC(), reason, taskID,
	)
	return err
}

// RequeueStaleTasks returns tasks stuck in queued (a crash between claim and
// completion) to pending so the next check picks them up again. Returns the
// number requeued.
func (db *DB) RequeueStaleTasks(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := db.ExecContext(ctx,
		`UPDATE scheduled_tasks SET status = 'pending', queued_at = NULL
		 WHERE status = 'queued' AND queued_at IS NOT NULL AND queued_at <= ?`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTasks returns an organization's tasks, optionally filtered by status.
func (db *DB) ListTasks(ctx context.Context, orgID, status string) ([]ScheduledTask, error) {
	query := `SELECT id, organization_id, agent_id, conversation_id, title, payload, due_at, status, last_error, queued_at, completed_at, created_at
		 FROM scheduled_tasks WHERE organization_id = ?`
	args := []interface{}{orgID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY due_at ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTasks(rows *sql.Rows) ([]ScheduledTask, error) {
	var out []ScheduledTask
	for rows.Next() {
		var t ScheduledTask
		var conversationID, payload, lastError sql.NullString
		var queuedAt, completedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.AgentID, &conversationID, &t.Title, &payload, &t.DueAt, &t.Status, &lastError, &queuedAt, &completedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.ConversationID = conversationID.String
		t.Payload = payload.String
		t.LastError = lastError.String
		if queuedAt.Valid {
			t.QueuedAt = &queuedAt.Time
		}
		if completedAt.Valid {
			t.CompletedAt = &completedAt.Time
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
