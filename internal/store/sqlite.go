// Package store is the SQLite persistence layer. All entity IDs are UUID
// strings; all timestamps are stored in UTC. Every query on tenant-owned
// tables filters by organization_id.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps *sql.DB for Atlas storage. Schema is owned by the app.
type DB struct {
	*sql.DB
}

// Open opens the SQLite database at path and applies the schema. Creates the
// file if missing.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	// Migration: queued_at on scheduled_tasks predates the stale-requeue sweep.
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pragma_table_info('scheduled_tasks') WHERE name='queued_at'").Scan(&count); err == nil && count == 0 {
		if _, err := db.ExecContext(ctx, "ALTER TABLE scheduled_tasks ADD COLUMN queued_at DATETIME"); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating schema (scheduled_tasks.queued_at): %w", err)
		}
	}

	return &DB{db}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.DB.Close()
}
