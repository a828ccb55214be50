package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ClassSession is one scheduled class occurrence.
type ClassSession struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	Name            string    `json:"name"`
	Instructor      string    `json:"instructor,omitempty"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Capacity        int       `json:"capacity"`
	Booked          int       `json:"booked"` // active bookings, filled by queries
	CreatedAt       time.Time `json:"created_at"`
}

// CreateClassSession inserts a session and returns its id.
func (db *DB) CreateClassSession(ctx context.Context, s ClassSession) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO class_sessions (id, organization_id, name, instructor, starts_at, duration_minutes, capacity)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.OrganizationID, s.Name, nullIfEmpty(s.Instructor), s.StartsAt.UTC(), s.DurationMinutes, s.Capacity,
	)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

const sessionWithBookedQuery = `
	SELECT s.id, s.organization_id, s.name, s.instructor, s.starts_at, s.duration_minutes, s.capacity,
	       (SELECT COUNT(*) FROM bookings b WHERE b.class_session_id = s.id AND b.status IN ('booked', 'attended')) AS booked,
	       s.created_at
	FROM class_sessions s`

// SessionsBetween returns an organization's sessions starting in [from, to),
// each with its active booking count.
func (db *DB) SessionsBetween(ctx context.Context, orgID string, from, to time.Time) ([]ClassSession, error) {
	rows, err := db.QueryContext(ctx,
		sessionWithBookedQuery+`
		 WHERE s.organization_id = ? AND s.starts_at >= ? AND s.starts_at < ?
		 ORDER BY s.starts_at ASC`,
		orgID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// GetClassSession returns one session with its booking count, org-scoped.
func (db *DB) GetClassSession(ctx context.Context, orgID, sessionID string) (*ClassSession, error) {
	row := db.QueryRowContext(ctx,
		sessionWithBookedQuery+` WHERE s.id = ? AND s.organization_id = ?`,
		sessionID, orgID,
	)
	var s ClassSession
	var instructor sql.NullString
	err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &instructor, &s.StartsAt, &s.DurationMinutes, &s.Capacity, &s.Booked, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.Instructor = instructor.String
	return &s, nil
}

func scanSessions(rows *sql.Rows) ([]ClassSession, error) {
	var out []ClassSession
	for rows.Next() {
		var s ClassSession
		var instructor sql.NullString
		if err := rows.Scan(&s.ID, &s.OrganizationID, &s.Name, &instructor, &s.StartsAt, &s.DurationMinutes, &s.Capacity, &s.Booked, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Instructor = instructor.String
		out = append(out, s)
	}
	return out, rows.Err()
}
