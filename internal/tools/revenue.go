package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/gymleadhub/atlas-agent/internal/core"
	"github.com/gymleadhub/atlas-agent/internal/store"
)

// GetRevenue aggregates succeeded payments over a date range.
type GetRevenue struct {
	DB *store.DB
}

func (t *GetRevenue) Name() string     { return "get_revenue" }
func (t *GetRevenue) Category() string { return "revenue" }
func (t *GetRevenue) Description() string {
	return "Total revenue between two dates: amount, payment count, and currency."
}

func (t *GetRevenue) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start_date": map[string]any{
				"type":        "string",
				"description": "Start of the range (inclusive), YYYY-MM-DD",
			},
			"end_date": map[string]any{
				"type":        "string",
				"description": "End of the range (inclusive), YYYY-MM-DD",
			},
		},
		"required": []string{"start_date", "end_date"},
	}
}

func (t *GetRevenue) Execute(ctx context.Context, args map[string]any, toolCtx core.ToolContext) (any, error) {
	startStr, err := RequireString(args, "start_date")
	if err != nil {
		return nil, err
	}
	endStr, err := RequireString(args, "end_date")
	if err != nil {
		return nil, err
	}
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", core.ErrInvalidArgument)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", core.ErrInvalidArgument)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date before start_date", core.ErrInvalidArgument)
	}

	// End date is inclusive: cover the whole final day.
	r, err := t.DB.RevenueBetween(ctx, toolCtx.OrganizationID, start, end.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"start_date":    startStr,
		"end_date":      endStr,
		"total":         float64(r.TotalCents) / 100,
		"payment_count": r.PaymentCount,
		"currency":      r.Currency,
	}, nil
}
