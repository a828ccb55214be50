package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Message is one persisted chat message. Role is user, assistant, or system;
// tool results are folded into the assistant row's ToolResults field rather
// than stored as separate role=tool rows.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	ToolCalls      string    `json:"tool_calls,omitempty"`   // JSON
	ToolResults    string    `json:"tool_results,omitempty"` // JSON
	Model          string    `json:"model,omitempty"`
	TokensUsed     int       `json:"tokens_used"`
	CostUSD        float64   `json:"cost_usd"`
	CreatedAt      time.Time `json:"created_at"`
}

// AppendMessage inserts a message at the tail of a conversation and returns
// its id. The timestamp is assigned here: strictly after the conversation's
// current newest message, so per-conversation created_at stays monotonic even
// when the wall clock jumps or two turns race.
func (db *DB) AppendMessage(ctx context.Context, m Message) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	ts := time.Now().UTC()
	var last sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT MAX(created_at) FROM messages WHERE conversation_id = ?`,
		m.ConversationID,
	).Scan(&last)
	if err != nil {
		return "", err
	}
	if last.Valid && !ts.After(last.Time) {
		ts = last.Time.Add(time.Millisecond)
	}
	m.CreatedAt = ts

	_, err = db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, tool_calls, tool_results, model, tokens_used, cost_usd, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.Role, m.Content, nullIfEmpty(m.ToolCalls), nullIfEmpty(m.ToolResults), nullIfEmpty(m.Model), m.TokensUsed, m.CostUSD, m.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// RecentMessages returns the newest limit messages of a conversation in
// chronological order.
func (db *DB) RecentMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, tool_calls, tool_results, model, tokens_used, cost_usd, created_at
		 FROM messages WHERE conversation_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var toolCalls, toolResults, model sql.NullString
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &toolCalls, &toolResults, &model, &m.TokensUsed, &m.CostUSD, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.ToolCalls = toolCalls.String
		m.ToolResults = toolResults.String
		m.Model = model.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Reverse newest-first into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
