// Package purchasing is the supplier-side mirror of the sale pipeline:
// purchases, purchase returns, and supplier payments.
package purchasing

import (
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Purchase is the header of one supplier purchase. Unit costs are
// tax-exclusive; TotalAmount = NetTotal + TaxTotal.
type Purchase struct {
	ID             id.ID       `json:"id" db:"id"`
	TenantID       string      `json:"tenant_id" db:"tenant_id"`
	PurchaseNumber string      `json:"purchase_number" db:"purchase_number"`
	SupplierID     id.ID       `json:"supplier_id" db:"supplier_id"`
	PaymentMethod  string      `json:"payment_method" db:"payment_method"`
	NetTotal       types.Money `json:"net_total" db:"net_total"`
	TaxTotal       types.Money `json:"tax_total" db:"tax_total"`
	TotalAmount    types.Money `json:"total_amount" db:"total_amount"`
	HandledBy      string      `json:"handled_by" db:"handled_by"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// PurchaseItem is one received line.
type PurchaseItem struct {
	ID         id.ID       `json:"-" db:"id"`
	TenantID   string      `json:"-" db:"tenant_id"`
	PurchaseID id.ID       `json:"-" db:"purchase_id"`
	ProductID  id.ID       `json:"product_id" db:"product_id"`
	Quantity   int64       `json:"quantity" db:"quantity"`
	UnitCost   types.Money `json:"unit_cost" db:"unit_cost"`
	Tax        types.Money `json:"tax" db:"tax"`
	TaxAmount  types.Money `json:"tax_amount" db:"tax_amount"`
	Total      types.Money `json:"total" db:"total"`
}

// PurchaseReturn is the header of goods sent back to a supplier.
type PurchaseReturn struct {
	ID         id.ID       `json:"id" db:"id"`
	TenantID   string      `json:"tenant_id" db:"tenant_id"`
	PurchaseID id.ID       `json:"purchase_id" db:"purchase_id"`
	SupplierID id.ID       `json:"supplier_id" db:"supplier_id"`
	NetTotal   types.Money `json:"net_total" db:"net_total"`
	TaxTotal   types.Money `json:"tax_total" db:"tax_total"`
	Total      types.Money `json:"total" db:"total"`
	HandledBy  string      `json:"handled_by" db:"handled_by"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}

// PurchaseReturnItem is one returned line, priced from the purchase.
type PurchaseReturnItem struct {
	ID        id.ID       `json:"-" db:"id"`
	TenantID  string      `json:"-" db:"tenant_id"`
	ReturnID  id.ID       `json:"-" db:"return_id"`
	ProductID id.ID       `json:"product_id" db:"product_id"`
	Quantity  int64       `json:"quantity" db:"quantity"`
	UnitCost  types.Money `json:"unit_cost" db:"unit_cost"`
	Tax       types.Money `json:"tax" db:"tax"`
	TaxAmount types.Money `json:"tax_amount" db:"tax_amount"`
	Total     types.Money `json:"total" db:"total"`
}

// SupplierPayment settles outstanding payables.
type SupplierPayment struct {
	ID         id.ID       `json:"id" db:"id"`
	TenantID   string      `json:"tenant_id" db:"tenant_id"`
	SupplierID id.ID       `json:"supplier_id" db:"supplier_id"`
	Amount     types.Money `json:"amount" db:"amount"`
	Method     string      `json:"method" db:"method"`
	Notes      string      `json:"notes" db:"notes"`
	PaidAt     time.Time   `json:"paid_at" db:"paid_at"`
}
