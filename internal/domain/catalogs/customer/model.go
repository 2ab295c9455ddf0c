// Package customer provides the customer catalog with loyalty balances.
package customer

import (
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Customer is one buyer identity owned by a tenant.
//
// LoyaltyPoints is the redeemable balance and never goes negative;
// LifetimePoints only ever increases (redemption does not touch it).
type Customer struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`

	FullName       string  `db:"full_name" json:"fullName"`
	MembershipTier *string `db:"membership_tier" json:"membershipTier,omitempty"`

	LoyaltyPoints  int64 `db:"loyalty_points" json:"loyaltyPoints"`
	LifetimePoints int64 `db:"lifetime_points" json:"lifetimePoints"`

	TotalPurchases int64       `db:"total_purchases" json:"totalPurchases"`
	TotalSpent     types.Money `db:"total_spent" json:"totalSpent"`
	LastPurchaseAt *time.Time  `db:"last_purchase_at" json:"lastPurchaseAt,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
