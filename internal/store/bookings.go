package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Booking statuses.
const (
	BookingBooked    = "booked"
	BookingWaitlist  = "waitlist"
	BookingCancelled = "cancelled"
	BookingAttended  = "attended"
)

// Booking links a client to a class session.
type Booking struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	ClientID       string    `json:"client_id"`
	ClassSessionID string    `json:"class_session_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BookClass inserts a booking for the client. The status is decided inside
// the insert against the session's remaining capacity, so two concurrent
// bookings for the last spot cannot both land as booked.
func (db *DB) BookClass(ctx context.Context, orgID, clientID, sessionID string) (*Booking, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO bookings (id, organization_id, client_id, class_session_id, status)
		 SELECT ?, ?, ?, s.id,
			CASE WHEN (SELECT COUNT(*) FROM bookings b
				   WHERE b.class_session_id = s.id AND b.status IN ('booked', 'attended')) < s.capacity
			     THEN 'booked' ELSE 'waitlist' END
		 FROM class_sessions s
		 WHERE s.id = ? AND s.organization_id = ?`,
		id, orgID, clientID, sessionID, orgID,
	)
	if err != nil {
		return nil, err
	}
	b, err := db.GetBooking(ctx, orgID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("class session %s not found", sessionID)
	}
	return b, err
}

// GetBooking returns a booking by id, org-scoped.
func (db *DB) GetBooking(ctx context.Context, orgID, bookingID string) (*Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, organization_id, client_id, class_session_id, status, created_at, updated_at
		 FROM bookings WHERE id = ? AND organization_id = ?`,
		bookingID, orgID,
	)
	var b Booking
	err := row.Scan(&b.ID, &b.OrganizationID, &b.ClientID, &b.ClassSessionID, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CancelBooking sets status to cancelled. Cancelling an already-cancelled
// booking is a no-op; the returned bool says whether the row changed.
func (db *DB) CancelBooking(ctx context.Context, orgID, bookingID string) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled', updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND organization_id = ? AND status != 'cancelled'`,
		bookingID, orgID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ClientBooking is a booking joined with its session, for the client-details
// tool.
type ClientBooking struct {
	BookingID string    `json:"booking_id"`
	ClassName string    `json:"class_name"`
	StartsAt  time.Time `json:"starts_at"`
	Status    string    `json:"status"`
}

// RecentBookingsForClient returns a client's newest bookings with session names.
func (db *DB) RecentBookingsForClient(ctx context.Context, orgID, clientID string, limit int) ([]ClientBooking, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT b.id, s.name, s.starts_at, b.status
		 FROM bookings b JOIN class_sessions s ON s.id = b.class_session_id
		 WHERE b.organization_id = ? AND b.client_id = ?
		 ORDER BY s.starts_at DESC LIMIT ?`,
		orgID, clientID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClientBooking
	for rows.Next() {
		var cb ClientBooking
		if err := rows.Scan(&cb.BookingID, &cb.ClassName, &cb.StartsAt, &cb.Status); err != nil {
			return nil, err
		}
		out = append(out, cb)
	}
	return out, rows.Err()
}
