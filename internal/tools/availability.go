package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/gymleadhub/atlas-agent/internal/core"
	"github.com/gymleadhub/atlas-agent/internal/store"
)

const dateLayout = "2006-01-02"

// maxScheduleDays caps how far ahead the schedule tools look.
const maxScheduleDays = 30

// CheckClassAvailability lists a day's sessions with remaining spots.
type CheckClassAvailability struct {
	DB *store.DB
}

func (t *CheckClassAvailability) Name() string     { return "check_class_availability" }
func (t *CheckClassAvailability) Category() string { return "booking" }
func (t *CheckClassAvailability) Description() string {
	return "Check which classes run on a given date and how many spots remain in each."
}

func (t *CheckClassAvailability) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date": map[string]any{
				"type":        "string",
				"description": "Date to check, YYYY-MM-DD",
			},
		},
		"required": []string{"date"},
	}
}

func (t *CheckClassAvailability) Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error) {
	dateStr, err := RequireString(args, "date")
	if err != nil {
		return nil, err
	}
	day, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", core.ErrInvalidArgument)
	}

	sessions, err := t.DB.SessionsBetween(ctx, toolCtx.OrganizationID, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	type slot struct {
		ClassSessionID string `json:"class_session_id"`
		Name           string `json:"name"`
		Instructor     string `json:"instructor,omitempty"`
		StartsAt       string `json:"starts_at"`
		Capacity       int    `json:"capacity"`
		Booked         int    `json:"booked"`
		SpotsLeft      int    `json:"spots_left"`
	}
	slots := make([]slot, 0, len(sessions))
	for _, s := range sessions {
		left := s.Capacity - s.Booked
		if left < 0 {
			left = 0
		}
		slots = append(slots, slot{
			ClassSessionID: s.ID,
			Name:           s.Name,
			Instructor:     s.Instructor,
			StartsAt:       s.StartsAt.Format(time.RFC3339),
			Capacity:       s.Capacity,
			Booked:         s.Booked,
			SpotsLeft:      left,
		})
	}
	return map[string]any{
		"date":    dateStr,
		"classes": slots,
	}, nil
}

// GetUpcomingClasses lists the schedule for the next N days.
type GetUpcomingClasses struct {
	DB *store.DB
}

func (t *GetUpcomingClasses) Name() string     { return "get_upcoming_classes" }
func (t *GetUpcomingClasses) Category() string { return "booking" }
func (t *GetUpcomingClasses) Description() string {
	return "List upcoming classes over the next few days, with start times and remaining spots."
}

func (t *GetUpcomingClasses) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"days": map[string]any{
				"type":        "integer",
				"description": "Lookahead in days, default 7, max 30",
			},
		},
	}
}

func (t *GetUpcomingClasses) Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error) {
	days := GetInt(args, "days", 7)
	if days < 1 {
		days = 1
	}
	if days > maxScheduleDays {
		days = maxScheduleDays
	}

	now := time.Now().UTC()
	sessions, err := t.DB.SessionsBetween(ctx, toolCtx.OrganizationID, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}

	type upcoming struct {
		ClassSessionID string `json:"class_session_id"`
		Name           string `json:"name"`
		Instructor     string `json:"instructor,omitempty"`
		StartsAt       string `json:"starts_at"`
		SpotsLeft      int    `json:"spots_left"`
	}
	out := make([]upcoming, 0, len(sessions))
	for _, s := range sessions {
		left := s.Capacity - s.Booked
		if left < 0 {
			left = 0
		}
		out = append(out, upcoming{
			ClassSessionID: s.ID,
			Name:           s.Name,
			Instructor:     s.Instructor,
			StartsAt:       s.StartsAt.Format(time.RFC3339),
			SpotsLeft:      left,
		})
	}
	return map[string]any{
		"days":    days,
		"classes": out,
	}, nil
}
