// Package product provides the product catalog read model.
// Products are CRUD-managed elsewhere; the sale pipeline only reads them
// to re-derive authoritative prices, never trusting client amounts.
package product

import (
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Product is one sellable item owned by a tenant.
type Product struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`

	Name string `db:"name" json:"name"`

	// CostPrice is the per-unit acquisition cost, used for COGS.
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// SellingPrice is VAT-inclusive.
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	// Tax is the VAT rate percent.
	Tax types.Money `db:"tax" json:"tax"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
