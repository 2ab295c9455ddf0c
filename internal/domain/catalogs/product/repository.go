package product

import (
	"context"

	"vendura/internal/core/id"
)

// Repository defines read operations on the product catalog.
type Repository interface {
	// GetByIDs fetches all referenced products in one batch, keyed by id.
	// Absent ids are simply missing from the map.
	GetByIDs(ctx context.Context, tenantID string, ids []id.ID) (map[id.ID]Product, error)
}
