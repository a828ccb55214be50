package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Client is a lead or member of a gym.
type Client struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Status         string    `json:"status"` // lead, active, inactive
	Source         string    `json:"source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateClient inserts a client and returns its id.
func (db *DB) CreateClient(ctx context.Context, c Client) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = "lead"
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO clients (id, organization_id, first_name, last_name, email, phone, status, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OrganizationID, c.FirstName, c.LastName, nullIfEmpty(c.Email), nullIfEmpty(c.Phone), c.Status, nullIfEmpty(c.Source),
	)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// SearchClients matches name, email, or phone against the query, newest first.
func (db *DB) SearchClients(ctx context.Context, orgID, query string, limit int) ([]Client, error) {
	like := "%" + query + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT id, organization_id, first_name, last_name, email, phone, status, source, created_at
		 FROM clients
		 WHERE organization_id = ?
		   AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?)
		 ORDER BY created_at DESC LIMIT ?`,
		orgID, like, like, like, like, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

// GetClient returns a client by id, scoped to the organization.
func (db *DB) GetClient(ctx context.Context, orgID, clientID string) (*Client, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, organization_id, first_name, last_name, email, phone, status, source, created_at
		 FROM clients WHERE id = ? AND organization_id = ?`,
		clientID, orgID,
	)
	var c Client
	var email, phone, source sql.NullString
	err := row.Scan(&c.ID, &c.OrganizationID, &c.FirstName, &c.LastName, &email, &phone, &c.Status, &source, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Email = email.String
	c.Phone = phone.String
	c.Source = source.String
	return &c, nil
}

// LeadStatCount is one row of the lead breakdown.
type LeadStatCount struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// LeadStats counts clients created in the window grouped by status and source.
func (db *DB) LeadStats(ctx context.Context, orgID string, since time.Time) ([]LeadStatCount, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COALESCE(source, ''), COUNT(*)
		 FROM clients
		 WHERE organization_id = ? AND created_at >= ?
		 GROUP BY status, source
		 ORDER BY status ASC, source ASC`,
		orgID, since.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeadStatCount
	for rows.Next() {
		var s LeadStatCount
		if err := rows.Scan(&s.Status, &s.Source, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanClients(rows *sql.Rows) ([]Client, error) {
	var out []Client
	for rows.Next() {
		var c Client
		var email, phone, source sql.NullString
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.FirstName, &c.LastName, &email, &phone, &c.Status, &source, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Email = email.String
		c.Phone = phone.String
		c.Source = source.String
		out = append(out, c)
	}
	return out, rows.Err()
}
