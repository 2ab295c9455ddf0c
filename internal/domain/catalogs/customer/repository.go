package customer

import (
	"context"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Repository defines the customer operations the sale pipeline needs.
type Repository interface {
	GetByID(ctx context.Context, tenantID string, customerID id.ID) (*Customer, error)

	// AdjustPoints applies a signed delta to loyalty_points and a separate
	// delta to lifetime_points in one conditional statement; it fails when
	// the resulting balance would be negative. Returns the new balance.
	AdjustPoints(ctx context.Context, tenantID string, customerID id.ID, pointsDelta, lifetimeDelta int64) (int64, error)

	// RecordPurchase bumps total_purchases/total_spent and stamps
	// last_purchase_at.
	RecordPurchase(ctx context.Context, tenantID string, customerID id.ID, amount types.Money) error
}
