package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// KnowledgeDocument is a per-organization reference document injected into
// the system prompt when active.
type KnowledgeDocument struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateKnowledgeDocument inserts a document and returns its id.
func (db *DB) CreateKnowledgeDocument(ctx context.Context, d KnowledgeDocument) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO knowledge_documents (id, organization_id, title, content, is_active)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.OrganizationID, d.Title, d.Content, d.IsActive,
	)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

// ActiveKnowledgeDocuments returns an organization's active documents,
// newest first.
func (db *DB) ActiveKnowledgeDocuments(ctx context.Context, orgID string, limit int) ([]KnowledgeDocument, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, organization_id, title, content, is_active, created_at, updated_at
		 FROM knowledge_documents
		 WHERE organization_id = ? AND is_active = 1
		 ORDER BY updated_at DESC LIMIT ?`,
		orgID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KnowledgeDocument
	for rows.Next() {
		var d KnowledgeDocument
		if err := rows.Scan(&d.ID, &d.OrganizationID, &d.Title, &d.Content, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
