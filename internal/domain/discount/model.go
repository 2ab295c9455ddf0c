// Package discount applies the multi-rule discount pipeline to
// VAT-inclusive amounts. Stages run in a fixed order — item, bill, coupon,
// membership tier, staff — each operating on the running total produced by
// the previous stage.
package discount

import (
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// RuleType distinguishes the rule kinds stored in disc_rules.
type RuleType string

const (
	RuleItem   RuleType = "item"
	RuleBill   RuleType = "bill"
	RuleCoupon RuleType = "coupon"
	RuleTier   RuleType = "tier"
)

// Channel names the discount stage a fired rule belongs to.
type Channel string

const (
	ChannelItem   Channel = "item"
	ChannelBill   Channel = "bill"
	ChannelCoupon Channel = "coupon"
	ChannelTier   Channel = "tier"
	ChannelStaff  Channel = "staff"
)

// Rule is one discount rule. Exactly one of DiscountPercent or
// DiscountAmount is set.
type Rule struct {
	ID       id.ID    `db:"id" json:"id"`
	TenantID string   `db:"tenant_id" json:"tenantId"`
	Type     RuleType `db:"rule_type" json:"type"`

	Name string `db:"name" json:"name"`

	DiscountPercent *types.Money `db:"discount_percent" json:"discountPercent,omitempty"`
	DiscountAmount  *types.Money `db:"discount_amount" json:"discountAmount,omitempty"`
	MinBillAmount   *types.Money `db:"min_bill_amount" json:"minBillAmount,omitempty"`

	// Item rules
	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`

	// Coupon rules
	Code             *string `db:"code" json:"code,omitempty"`
	MaxUses          *int64  `db:"max_uses" json:"maxUses,omitempty"`
	PerCustomerLimit *int64  `db:"per_customer_limit" json:"perCustomerLimit,omitempty"`

	// Tier rules
	Tier *string `db:"tier" json:"tier,omitempty"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// StaffRule is the per-tenant staff discount configuration.
type StaffRule struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`

	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`

	// MaxPerBill caps a single bill's staff discount.
	MaxPerBill types.Money `db:"max_per_bill" json:"maxPerBill"`

	// MonthlyLimit caps the employee's aggregate discount per calendar month.
	MonthlyLimit types.Money `db:"monthly_limit" json:"monthlyLimit"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// StaffUsage is one staff-discount consumption row. InvoiceID starts null
// and is patched once the invoice exists.
type StaffUsage struct {
	ID         id.ID  `db:"id" json:"id"`
	TenantID   string `db:"tenant_id" json:"tenantId"`
	EmployeeID id.ID  `db:"employee_id" json:"employeeId"`

	InvoiceID      *id.ID      `db:"invoice_id" json:"invoiceId,omitempty"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	UsedAt         time.Time   `db:"used_at" json:"usedAt"`
}

// Applied records one rule that fired, for the invoice_discounts table.
type Applied struct {
	RuleID      id.ID       `json:"ruleId"`
	Channel     Channel     `json:"channel"`
	Amount      types.Money `json:"amount"`
	Description string      `json:"description"`
}
