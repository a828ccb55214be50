package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Payment is a completed charge against a client.
type Payment struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	ClientID       string    `json:"client_id,omitempty"`
	AmountCents    int64     `json:"amount_cents"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"` // succeeded, refunded, failed
	PaidAt         time.Time `json:"paid_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreatePayment inserts a payment and returns its id.
func (db *DB) CreatePayment(ctx context.Context, p Payment) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = "GBP"
	}
	if p.Status == "" {
		p.Status = "succeeded"
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO payments (id, organization_id, client_id, amount_cents, currency, status, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OrganizationID, nullIfEmpty(p.ClientID), p.AmountCents, p.Currency, p.Status, p.PaidAt.UTC(),
	)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// RevenueTotal is an aggregation of succeeded payments over a window.
type RevenueTotal struct {
	TotalCents   int64  `json:"total_cents"`
	PaymentCount int    `json:"payment_count"`
	Currency     string `json:"currency"`
}

// RevenueBetween sums succeeded payments with paid_at in [from, to].
func (db *DB) RevenueBetween(ctx context.Context, orgID string, from, to time.Time) (*RevenueTotal, error) {
	row := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*), COALESCE(MAX(currency), 'GBP')
		 FROM payments
		 WHERE organization_id = ? AND status = 'succeeded' AND paid_at >= ? AND paid_at <= ?`,
		orgID, from.UTC(), to.UTC(),
	)
	var r RevenueTotal
	if err := row.Scan(&r.TotalCents, &r.PaymentCount, &r.Currency); err != nil {
		return nil, err
	}
	return &r, nil
}
