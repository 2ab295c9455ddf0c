// Package sales owns the sale transaction pipeline: invoice creation,
// sales returns, and the deferred post-sale tail.
package sales

import (
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Payment methods.
const (
	PayCash   = "cash"
	PayCard   = "card"
	PayUPI    = "upi"
	PayBank   = "bank"
	PayCredit = "credit"
)

// Refund types for sales returns.
const (
	RefundCash       = "cash"
	RefundCreditNote = "credit_note"
)

// Invoice is the sale header. Immutable once its child rows exist.
type Invoice struct {
	ID             id.ID       `json:"id" db:"id"`
	TenantID       string      `json:"tenant_id" db:"tenant_id"`
	InvoiceNumber  string      `json:"invoice_number" db:"invoice_number"`
	CustomerID     *id.ID      `json:"customer_id,omitempty" db:"customer_id"`
	PaymentMethod  string      `json:"payment_method" db:"payment_method"`
	Subtotal       types.Money `json:"subtotal" db:"subtotal"`
	ItemDiscount   types.Money `json:"item_discount" db:"item_discount"`
	BillDiscount   types.Money `json:"bill_discount" db:"bill_discount"`
	CouponDiscount types.Money `json:"coupon_discount" db:"coupon_discount"`
	TierDiscount   types.Money `json:"tier_discount" db:"tier_discount"`
	StaffDiscount  types.Money `json:"staff_discount" db:"staff_discount"`
	RedeemedPoints int64       `json:"redeemed_points" db:"redeemed_points"`
	FinalAmount    types.Money `json:"final_amount" db:"final_amount"`
	HandledBy      string      `json:"handled_by" db:"handled_by"`
	PDFURL         *string     `json:"pdf_url,omitempty" db:"pdf_url"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// InvoiceItem is one sold line. Price is the VAT-inclusive unit price
// after per-unit discount; NetPrice is its VAT-exclusive counterpart.
// CostPrice snapshots the product cost at sale time for COGS.
// Sum of Total over an invoice equals FinalAmount to the cent; rounding
// drift is folded into the first line.
type InvoiceItem struct {
	ID             id.ID       `json:"-" db:"id"`
	TenantID       string      `json:"-" db:"tenant_id"`
	InvoiceID      id.ID       `json:"-" db:"invoice_id"`
	ProductID      id.ID       `json:"product_id" db:"product_id"`
	Name           string      `json:"name" db:"name"`
	Quantity       int64       `json:"quantity" db:"quantity"`
	Price          types.Money `json:"price" db:"price"`
	Tax            types.Money `json:"tax" db:"tax"`
	TaxAmount      types.Money `json:"tax_amount" db:"tax_amount"`
	DiscountAmount types.Money `json:"discount_amount" db:"discount_amount"`
	NetPrice       types.Money `json:"net_price" db:"net_price"`
	Total          types.Money `json:"total" db:"total"`
	CostPrice      types.Money `json:"-" db:"cost_price"`
}

// InvoiceDiscount records one fired rule on an invoice.
type InvoiceDiscount struct {
	ID          id.ID       `json:"id" db:"id"`
	TenantID    string      `json:"tenant_id" db:"tenant_id"`
	InvoiceID   id.ID       `json:"invoice_id" db:"invoice_id"`
	RuleID      id.ID       `json:"rule_id" db:"rule_id"`
	Channel     string      `json:"channel" db:"channel"`
	Amount      types.Money `json:"amount" db:"amount"`
	Description string      `json:"description" db:"description"`
}

// Return is the sales-return header. Created with a zero total, filled
// once the line totals are computed.
type Return struct {
	ID          id.ID       `json:"id" db:"id"`
	TenantID    string      `json:"tenant_id" db:"tenant_id"`
	InvoiceID   id.ID       `json:"invoice_id" db:"invoice_id"`
	CustomerID  *id.ID      `json:"customer_id,omitempty" db:"customer_id"`
	RefundType  string      `json:"refund_type" db:"refund_type"`
	TotalRefund types.Money `json:"total_refund" db:"total_refund"`
	HandledBy   string      `json:"handled_by" db:"handled_by"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// ReturnItem is one returned line, priced from the product catalog.
type ReturnItem struct {
	ID        id.ID       `json:"-" db:"id"`
	TenantID  string      `json:"-" db:"tenant_id"`
	ReturnID  id.ID       `json:"-" db:"return_id"`
	ProductID id.ID       `json:"product_id" db:"product_id"`
	Quantity  int64       `json:"quantity" db:"quantity"`
	Price     types.Money `json:"price" db:"price"`
	Tax       types.Money `json:"tax" db:"tax"`
	TaxAmount types.Money `json:"tax_amount" db:"tax_amount"`
	Total     types.Money `json:"total" db:"total"`
	CostPrice types.Money `json:"-" db:"cost_price"`
}
