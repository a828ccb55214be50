package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gymleadhub/atlas-agent/internal/core"
)

// Agent is a configured AI assistant belonging to one organization.
type Agent struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	SystemPrompt   string    `json:"system_prompt"`
	Model          string    `json:"model,omitempty"`
	Temperature    float64   `json:"temperature"`
	MaxTokens      int       `json:"max_tokens"`
	AllowedTools   []string  `json:"allowed_tools,omitempty"` // nil = all registered tools
	Enabled        bool      `json:"enabled"`
	Metadata       string    `json:"metadata,omitempty"` // JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateAgent inserts an agent and returns its id.
func (db *DB) CreateAgent(ctx context.Context, a Agent) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var allowed interface{}
	if a.AllowedTools != nil {
		b, err := json.Marshal(a.AllowedTools)
		if err != nil {
			return "", fmt.Errorf("encoding allowed_tools: %w", err)
		}
		allowed = string(b)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO agents (id, organization_id, name, system_prompt, model, temperature, max_tokens, allowed_tools, enabled, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OrganizationID, a.Name, a.SystemPrompt, a.Model, a.Temperature, a.MaxTokens, allowed, a.Enabled, a.Metadata,
	)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// GetAgent returns the agent by id, scoped to the organization. A match in a
// different organization is indistinguishable from no match.
func (db *DB) GetAgent(ctx context.Context, orgID, agentID string) (*Agent, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, organization_id, name, system_prompt, model, temperature, max_tokens, allowed_tools, enabled, metadata, created_at, updated_at
		 FROM agents WHERE id = ? AND organization_id = ?`,
		agentID, orgID,
	)
	var a Agent
	var model, allowed, metadata sql.NullString
	err := row.Scan(&a.ID, &a.OrganizationID, &a.Name, &a.SystemPrompt, &model, &a.Temperature, &a.MaxTokens, &allowed, &a.Enabled, &metadata, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Model = model.String
	a.Metadata = metadata.String
	if allowed.Valid && allowed.String != "" {
		if err := json.Unmarshal([]byte(allowed.String), &a.AllowedTools); err != nil {
			return nil, fmt.Errorf("decoding allowed_tools for agent %s: %w", a.ID, err)
		}
	}
	return &a, nil
}

// SetAgentEnabled flips the enabled flag.
func (db *DB) SetAgentEnabled(ctx context.Context, orgID, agentID string, enabled bool) error {
	res, err := db.ExecContext(ctx,
		`UPDATE agents SET enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND organization_id = ?`,
		enabled, agentID, orgID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrAgentNotFound
	}
	return nil
}
