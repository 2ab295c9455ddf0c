// Package vat maintains the per-tenant monthly VAT report rows.
package vat

import (
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Report is the aggregate row for one (tenant, period).
type Report struct {
	ID             id.ID       `json:"id" db:"id"`
	TenantID       string      `json:"tenant_id" db:"tenant_id"`
	Period         string      `json:"period" db:"period"`
	TotalSales     types.Money `json:"total_sales" db:"total_sales"`
	SalesVAT       types.Money `json:"sales_vat" db:"sales_vat"`
	TotalPurchases types.Money `json:"total_purchases" db:"total_purchases"`
	PurchaseVAT    types.Money `json:"purchase_vat" db:"purchase_vat"`
	VATPayable     types.Money `json:"vat_payable" db:"vat_payable"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// Delta is one signed adjustment to a period's aggregates.
type Delta struct {
	TotalSales     types.Money
	SalesVAT       types.Money
	TotalPurchases types.Money
	PurchaseVAT    types.Money
}

// Period formats a timestamp as the report key, "YYYY-MM".
func Period(t time.Time) string {
	return t.Format("2006-01")
}
