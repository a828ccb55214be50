package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Organization is one tenant.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateOrganization inserts an organization and returns its id.
func (db *DB) CreateOrganization(ctx context.Context, name, timezone string) (string, error) {
	id := uuid.NewString()
	if timezone == "" {
		timezone = "Europe/London"
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, timezone) VALUES (?, ?, ?)`,
		id, name, timezone,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetOrganization returns an organization by id.
func (db *DB) GetOrganization(ctx context.Context, orgID string) (*Organization, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, name, timezone, created_at FROM organizations WHERE id = ?`, orgID)
	var o Organization
	if err := row.Scan(&o.ID, &o.Name, &o.Timezone, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
