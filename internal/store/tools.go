package store

import (
	"context"
	"database/sql"
	"time"
)

// ToolRecord is the DB projection of a registered tool, kept for UI
// introspection. The in-process registry is the source of truth; SyncTools
// writes this table one way.
type ToolRecord struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	InputSchema string    `json:"input_schema"` // JSON Schema
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpsertTool inserts or updates a tool record by name.
func (db *DB) UpsertTool(ctx context.Context, name, description, category, inputSchema string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO tools (name, description, category, input_schema, enabled)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			category = excluded.category,
			input_schema = excluded.input_schema,
			updated_at = CURRENT_TIMESTAMP`,
		name, description, category, inputSchema,
	)
	return err
}

// ListToolRecords returns all tool records ordered by category then name.
func (db *DB) ListToolRecords(ctx context.Context) ([]ToolRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, category, input_schema, enabled, created_at, updated_at
		 FROM tools ORDER BY category ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ToolRecord
	for rows.Next() {
		var t ToolRecord
		var description, category, inputSchema sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &description, &category, &inputSchema, &t.Enabled, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Description = description.String
		t.Category = category.String
		t.InputSchema = inputSchema.String
		out = append(out, t)
	}
	return out, rows.Err()
}

// PruneTools deletes records whose names are not in keep. Used by sync after
// a tool is removed from the registry.
func (db *DB) PruneTools(ctx context.Context, keep []string) (int64, error) {
	if len(keep) == 0 {
		res, err := db.ExecContext(ctx, `DELETE FROM tools`)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
	query := `DELETE FROM tools WHERE name NOT IN (?` // at least one
	args := []interface{}{keep[0]}
	for _, name := range keep[1:] {
		query += ", ?"
		args = append(args, name)
	}
	query += ")"
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
