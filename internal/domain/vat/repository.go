package vat

import (
	"context"
)

// Repository persists VAT report rows.
type Repository interface {
	// ApplyDelta upserts the (tenant, period) row with zero initial
	// values, then adds the delta and recomputes vat_payable, all in one
	// atomic statement so concurrent sales in the same period never lose
	// increments.
	ApplyDelta(ctx context.Context, tenantID, period string, d Delta) error

	// Get returns the row for a period, or nil when no activity has been
	// recorded yet.
	Get(ctx context.Context, tenantID, period string) (*Report, error)
}
