// Package supplier provides the supplier catalog read model used by the
// purchase pipeline.
package supplier

import (
	"context"
	"time"

	"vendura/internal/core/id"
)

// Supplier is one goods source owned by a tenant.
type Supplier struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`

	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Repository defines the supplier reads the purchase pipeline needs.
type Repository interface {
	GetByID(ctx context.Context, tenantID string, supplierID id.ID) (*Supplier, error)
}
