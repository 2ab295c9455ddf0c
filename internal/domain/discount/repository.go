package discount

import (
	"context"
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Repository defines discount rule loading and usage recording.
//
// RecordCouponUsage must re-check the caps inside the same statement that
// records the usage row (conditional insert); a read-then-insert sequence
// is not acceptable under concurrency.
type Repository interface {
	// ListActiveRules loads every active rule for the tenant in one query.
	ListActiveRules(ctx context.Context, tenantID string) ([]Rule, error)

	// GetActiveStaffRule returns the tenant's staff rule, or nil.
	GetActiveStaffRule(ctx context.Context, tenantID string) (*StaffRule, error)

	// CouponUsageCount returns the global usage count for a coupon.
	CouponUsageCount(ctx context.Context, tenantID string, couponID id.ID) (int64, error)

	// CouponUsageCountByCustomer returns usage count for one customer.
	CouponUsageCountByCustomer(ctx context.Context, tenantID string, couponID, customerID id.ID) (int64, error)

	// RecordCouponUsage inserts the usage row only while the caps hold;
	// when the conditional insert affects no row the caller gets
	// COUPON_LIMIT_GLOBAL / COUPON_LIMIT_CUSTOMER / COUPON_USAGE_RACE.
	RecordCouponUsage(ctx context.Context, tenantID string, couponID id.ID, customerID *id.ID, invoiceID id.ID, maxUses, perCustomerLimit *int64) error

	// StaffUsageMonthTotal sums discount_amount for the employee in the
	// calendar month containing at.
	StaffUsageMonthTotal(ctx context.Context, tenantID string, employeeID id.ID, at time.Time) (types.Money, error)

	// CreateStaffUsage appends a tentative usage row (invoice_id null).
	CreateStaffUsage(ctx context.Context, usage *StaffUsage) error

	// AttachStaffUsageInvoice patches the tentative row with the invoice id.
	AttachStaffUsageInvoice(ctx context.Context, tenantID string, usageID, invoiceID id.ID) error
}
