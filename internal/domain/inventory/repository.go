package inventory

import (
	"context"

	"vendura/internal/core/id"
)

// Repository persists stock rows and movements.
type Repository interface {
	// Get returns the row for (tenant, product), or nil when absent.
	Get(ctx context.Context, tenantID string, productID id.ID) (*Row, error)

	// Decrement atomically subtracts qty from the row in one conditional
	// statement. It fails with NO_INVENTORY_ROW when the row is absent and
	// with INSUFFICIENT_STOCK when the row holds fewer than qty units, so
	// concurrent sales of the last units cannot oversell. Returns the new
	// quantity and the row's reorder level.
	Decrement(ctx context.Context, tenantID string, productID id.ID, qty int64) (newQty, reorderLevel int64, err error)

	// Increase adds qty to an existing row; fails with NO_INVENTORY_ROW
	// when the row is absent.
	Increase(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, error)

	// IncreaseOrCreate adds qty, creating the row when absent. Used by the
	// purchase side, which is allowed to introduce new stock.
	IncreaseOrCreate(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, error)

	// AppendMovements bulk-inserts journal entries.
	AppendMovements(ctx context.Context, movements []Movement) error

	// ListMovements returns the most recent journal entries, newest
	// first, optionally filtered by product.
	ListMovements(ctx context.Context, tenantID string, productID *id.ID, limit uint64) ([]Movement, error)
}
