// Package loyalty maintains per-customer point balances and the
// append-only transaction ledger behind them.
package loyalty

import (
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Transaction types.
const (
	TxnEarn   = "earn"
	TxnRedeem = "redeem"
)

// Rule converts sale amounts into earned points. At most one rule is
// active per tenant; without one the default is one point per 100
// currency units.
type Rule struct {
	ID                id.ID       `json:"id" db:"id"`
	TenantID          string      `json:"tenant_id" db:"tenant_id"`
	PointsPerCurrency int64       `json:"points_per_currency" db:"points_per_currency"`
	CurrencyUnit      types.Money `json:"currency_unit" db:"currency_unit"`
	IsActive          bool        `json:"is_active" db:"is_active"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
}

// Transaction is one ledger entry. Points are signed: positive for earn,
// negative for redeem. BalanceAfter snapshots the customer balance the
// entry produced.
type Transaction struct {
	ID           id.ID     `json:"id" db:"id"`
	TenantID     string    `json:"tenant_id" db:"tenant_id"`
	CustomerID   id.ID     `json:"customer_id" db:"customer_id"`
	Type         string    `json:"transaction_type" db:"transaction_type"`
	Points       int64     `json:"points" db:"points"`
	BalanceAfter int64     `json:"balance_after" db:"balance_after"`
	InvoiceID    *id.ID    `json:"invoice_id,omitempty" db:"invoice_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
