// Package inventory tracks per-product stock rows and the append-only
// stock-movement journal.
package inventory

import (
	"time"

	"vendura/internal/core/id"
)

// Movement types. Sale and purchase_return carry negative quantities,
// purchase and sale_return positive ones.
const (
	MovePurchase       = "purchase"
	MoveSale           = "sale"
	MovePurchaseReturn = "purchase_return"
	MoveSaleReturn     = "sale_return"
)

// Row is the stock record for one (tenant, product) pair. Sales never
// create rows; a missing row refuses the sale.
type Row struct {
	TenantID     string     `json:"tenant_id" db:"tenant_id"`
	ProductID    id.ID      `json:"product_id" db:"product_id"`
	Quantity     int64      `json:"quantity" db:"quantity"`
	ReorderLevel int64      `json:"reorder_level" db:"reorder_level"`
	MaxStock     *int64     `json:"max_stock,omitempty" db:"max_stock"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Movement is one journal entry: a signed quantity delta with provenance.
type Movement struct {
	ID             id.ID     `json:"id" db:"id"`
	TenantID       string    `json:"tenant_id" db:"tenant_id"`
	ProductID      id.ID     `json:"product_id" db:"product_id"`
	MovementType   string    `json:"movement_type" db:"movement_type"`
	Quantity       int64     `json:"quantity" db:"quantity"`
	ReferenceTable string    `json:"reference_table" db:"reference_table"`
	ReferenceID    id.ID     `json:"reference_id" db:"reference_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// LowStockAlert is returned to the caller when a decrement lands at or
// below the row's reorder level.
type LowStockAlert struct {
	ProductID    id.ID `json:"product_id"`
	NewQty       int64 `json:"newQty"`
	ReorderLevel int64 `json:"reorder_level"`
}
