package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gymleadhub/atlas-agent/internal/core"
)

// Conversation is one chat thread between a user and an agent.
type Conversation struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	AgentID        string    `json:"agent_id"`
	UserID         string    `json:"user_id,omitempty"`
	Status         string    `json:"status"` // active, archived, deleted
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateConversation inserts an active conversation and returns its id.
func (db *DB) CreateConversation(ctx context.Context, orgID, agentID, userID string) (string, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO conversations (id, organization_id, agent_id, user_id, status) VALUES (?, ?, ?, ?, 'active')`,
		id, orgID, agentID, userID,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetConversation returns a conversation by id, scoped to the organization.
func (db *DB) GetConversation(ctx context.Context, orgID, conversationID string) (*Conversation, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, organization_id, agent_id, user_id, status, created_at, updated_at
		 FROM conversations WHERE id = ? AND organization_id = ?`,
		conversationID, orgID,
	)
	var c Conversation
	var userID sql.NullString
	err := row.Scan(&c.ID, &c.OrganizationID, &c.AgentID, &userID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	c.UserID = userID.String
	return &c, nil
}

// TouchConversation bumps updated_at after a new exchange.
func (db *DB) TouchConversation(ctx context.Context, orgID, conversationID string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ? AND organization_id = ?`,
		conversationID, orgID,
	)
	return err
}
