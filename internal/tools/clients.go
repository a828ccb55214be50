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

// maxClientResults caps list sizes fed back to the model.
const maxClientResults = 25

// SearchClients matches clients by name, email, or phone.
type SearchClients struct {
	DB *store.DB
}

func (t *SearchClients) Name() string     { return "search_clients" }
func (t *SearchClients) Category() string { return "clients" }
func (t *SearchClients) Description() string {
	return "Search clients and leads by name, email, or phone number."
}

func (t *SearchClients) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Name, email, or phone fragment to match",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Max results, default 10",
			},
		},
		"required": []string{"query"},
	}
}

func (t *SearchClients) Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error) {
	query, err := RequireString(args, "query")
	if err != nil {
		return nil, err
	}
	limit := GetInt(args, "limit", 10)
	if limit < 1 {
		limit = 1
	}
	if limit > maxClientResults {
		limit = maxClientResults
	}

	clients, err := t.DB.SearchClients(ctx, toolCtx.OrganizationID, query, limit)
	if err != nil {
		return nil, err
	}

	type match struct {
		ClientID string `json:"client_id"`
		Name     string `json:"name"`
		Email    string `json:"email,omitempty"`
		Phone    string `json:"phone,omitempty"`
		Status   string `json:"status"`
	}
	out := make([]match, 0, len(clients))
	for _, c := range clients {
		out = append(out, match{
			ClientID: c.ID,
			Name:     c.FirstName + " " + c.LastName,
			Email:    c.Email,
			Phone:    c.Phone,
			Status:   c.Status,
		})
	}
	return map[string]any{
		"query":   query,
		"matches": out,
	}, nil
}

// GetClientDetails returns one client's profile with recent bookings.
type GetClientDetails struct {
	DB *store.DB
}

func (t *GetClientDetails) Name() string     { return "get_client_details" }
func (t *GetClientDetails) Category() string { return "clients" }
func (t *GetClientDetails) Description() string {
	return "Full profile for one client, including their recent bookings."
}

func (t *GetClientDetails) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"client_id": map[string]any{
				"type":        "string",
				"description": "Client id from search_clients",
			},
		},
		"required": []string{"client_id"},
	}
}

func (t *GetClientDetails) Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error) {
	clientID, err := RequireString(args, "client_id")
	if err != nil {
		return nil, err
	}

	c, err := t.DB.GetClient(ctx, toolCtx.OrganizationID, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %s not found", clientID)
	}
	if err != nil {
		return nil, err
	}
	bookings, err := t.DB.RecentBookingsForClient(ctx, toolCtx.OrganizationID, clientID, 10)
	if err != nil {
		return nil, err
	}

	type recentBooking struct {
		BookingID string `json:"booking_id"`
		ClassName string `json:"class_name"`
		StartsAt  string `json:"starts_at"`
		Status    string `json:"status"`
	}
	recent := make([]recentBooking, 0, len(bookings))
	for _, b := range bookings {
		recent = append(recent, recentBooking{
			BookingID: b.BookingID,
			ClassName: b.ClassName,
			StartsAt:  b.StartsAt.Format(time.RFC3339),
			Status:    b.Status,
		})
	}
	return map[string]any{
		"client_id":       c.ID,
		"name":            c.FirstName + " " + c.LastName,
		"email":           c.Email,
		"phone":           c.Phone,
		"status":          c.Status,
		"source":          c.Source,
		"member_since":    c.CreatedAt.Format(dateLayout),
		"recent_bookings": recent,
	}, nil
}

// GetLeadStats counts recent leads grouped by status and source.
type GetLeadStats struct {
	DB *store.DB
}

func (t *GetLeadStats) Name() string     { return "get_lead_stats" }
func (t *GetLeadStats) Category() string { return "clients" }
func (t *GetLeadStats) Description() string {
	return "Lead counts for the recent period, broken down by status and source."
}

func (t *GetLeadStats) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"days": map[string]any{
				"type":        "integer",
				"description": "Window in days, default 30",
			},
		},
	}
}

func (t *GetLeadStats) Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error) {
	days := GetInt(args, "days", 30)
	if days < 1 {
		days = 1
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	stats, err := t.DB.LeadStats(ctx, toolCtx.OrganizationID, since)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	return map[string]any{
		"days":      days,
		"total":     total,
		"breakdown": stats,
	}, nil
}
