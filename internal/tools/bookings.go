package tools

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gymleadhub/atlas-agent/internal/core"
	"github.com/gymleadhub/atlas-agent/internal/store"
)

// BookClass books a client into a class session, honoring capacity.
type BookClass struct {
	DB *store.DB
}

func (t *BookClass) Name() string     { return "book_class" }
func (t *BookClass) Category() string { return "booking" }
func (t *BookClass) Description() string {
	return "Book a client into a class session. A full class puts them on the waitlist."
}

func (t *BookClass) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"client_id": map[string]any{
				"type":        "string",
				"description": "Client to book",
			},
			"class_session_id": map[string]any{
				"type":        "string",
				"description": "Class session from check_class_availability",
			},
		},
		"required": []string{"client_id", "class_session_id"},
	}
}

func (t *BookClass) Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error) {
	clientID, err := RequireString(args, "client_id")
	if err != nil {
		return nil, err
	}
	sessionID, err := RequireString(args, "class_session_id")
	if err != nil {
		return nil, err
	}

	// Both rows must exist in the caller's org before writing.
	if _, err := t.DB.GetClient(ctx, toolCtx.OrganizationID, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s not found", clientID)
		}
		return nil, err
	}
	session, err := t.DB.GetClassSession(ctx, toolCtx.OrganizationID, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("class session %s not found", sessionID)
	}
	if err != nil {
		return nil, err
	}

	b, err := t.DB.BookClass(ctx, toolCtx.OrganizationID, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"booking_id": b.ID,
		"status":     b.Status,
		"class_name": session.Name,
		"starts_at":  session.StartsAt.Format(time.RFC3339),
		"waitlisted": b.Status == store.BookingWaitlist,
	}, nil
}

// CancelBooking cancels an existing booking.
type CancelBooking struct {
	DB *store.DB
}

func (t *CancelBooking) Name() string     { return "cancel_booking" }
func (t *CancelBooking) Category() string { return "booking" }
func (t *CancelBooking) Description() string {
	return "Cancel a booking. Cancelling an already-cancelled booking is a no-op."
}

func (t *CancelBooking) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"booking_id": map[string]any{
				"type":        "string",
				"description": "Booking to cancel",
			},
		},
		"required": []string{"booking_id"},
	}
}

func (t *CancelBooking) Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error) {
	bookingID, err := RequireString(args, "booking_id")
	if err != nil {
		return nil, err
	}

	changed, err := t.DB.CancelBooking(ctx, toolCtx.OrganizationID, bookingID)
	if err != nil {
		return nil, err
	}
	b, err := t.DB.GetBooking(ctx, toolCtx.OrganizationID, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"booking_id":        b.ID,
		"status":            b.Status,
		"already_cancelled": !changed,
	}, nil
}
