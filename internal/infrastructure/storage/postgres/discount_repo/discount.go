// Package discount_repo provides the PostgreSQL implementation of the
// discount rule store, including the race-safe coupon usage insert.
package discount_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/discount"
	"vendura/internal/infrastructure/storage/postgres"
)

const (
	rulesTable       = "disc_rules"
	staffRulesTable  = "disc_staff_rules"
	couponUsageTable = "disc_coupon_usages"
	staffUsageTable  = "disc_staff_usages"
)

// Repo implements discount.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a discount repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListActiveRules returns every active rule for the tenant.
func (r *Repo) ListActiveRules(ctx context.Context, tenantID string) ([]discount.Rule, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "rule_type", "name",
			"discount_percent", "discount_amount", "min_bill_amount",
			"product_id", "code", "max_uses", "per_customer_limit", "tier",
			"is_active", "created_at").
		From(rulesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "is_active": true}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rules []discount.Rule
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rules, sql, args...); err != nil {
		return nil, fmt.Errorf("select rules: %w", err)
	}
	return rules, nil
}

// GetActiveStaffRule returns the tenant's staff rule, or nil.
func (r *Repo) GetActiveStaffRule(ctx context.Context, tenantID string) (*discount.StaffRule, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "discount_percent", "max_per_bill",
			"monthly_limit", "is_active", "created_at").
		From(staffRulesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rules []discount.StaffRule
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rules, sql, args...); err != nil {
		return nil, fmt.Errorf("select staff rule: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

// CouponUsageCount counts committed usages of one coupon.
func (r *Repo) CouponUsageCount(ctx context.Context, tenantID string, couponID id.ID) (int64, error) {
	return r.usageCount(ctx, squirrel.Eq{"tenant_id": tenantID, "coupon_id": couponID})
}

// CouponUsageCountByCustomer counts usages by one customer.
func (r *Repo) CouponUsageCountByCustomer(ctx context.Context, tenantID string, couponID, customerID id.ID) (int64, error) {
	return r.usageCount(ctx, squirrel.Eq{"tenant_id": tenantID, "coupon_id": couponID, "customer_id": customerID})
}

func (r *Repo) usageCount(ctx context.Context, where squirrel.Eq) (int64, error) {
	sql, args, err := r.builder.Select("COUNT(*)").From(couponUsageTable).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count coupon usage: %w", err)
	}
	return n, nil
}

// RecordCouponUsage inserts a usage row only while the caps hold. The
// caps are re-checked inside the INSERT itself so two concurrent sales
// cannot both take the last slot; the losing sale fails with
// COUPON_USAGE_RACE and rolls back.
func (r *Repo) RecordCouponUsage(ctx context.Context, tenantID string, couponID id.ID, customerID *id.ID, invoiceID id.ID, maxUses, perCustomerLimit *int64) error {
	const sql = `
		INSERT INTO disc_coupon_usages (id, tenant_id, coupon_id, customer_id, invoice_id, used_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE ($7::bigint IS NULL OR
		       (SELECT COUNT(*) FROM disc_coupon_usages
		        WHERE tenant_id = $2 AND coupon_id = $3) < $7)
		  AND ($8::bigint IS NULL OR $4::uuid IS NULL OR
		       (SELECT COUNT(*) FROM disc_coupon_usages
		        WHERE tenant_id = $2 AND coupon_id = $3 AND customer_id = $4) < $8)`

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql,
		id.New(), tenantID, couponID, customerID, invoiceID, time.Now().UTC(),
		maxUses, perCustomerLimit)
	if err != nil {
		return fmt.Errorf("record coupon usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict(apperror.CodeCouponUsageRace, "coupon usage limit reached concurrently")
	}
	return nil
}

// StaffUsageMonthTotal sums an employee's staff discounts in the
// calendar month of at.
func (r *Repo) StaffUsageMonthTotal(ctx context.Context, tenantID string, employeeID id.ID, at time.Time) (types.Money, error) {
	monthStart := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	sql, args, err := r.builder.
		Select("COALESCE(SUM(discount_amount), 0)").
		From(staffUsageTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "employee_id": employeeID}).
		Where(squirrel.GtOrEq{"used_at": monthStart}).
		Where(squirrel.Lt{"used_at": monthEnd}).
		ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total types.Money
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum staff usage: %w", err)
	}
	return total, nil
}

// CreateStaffUsage inserts a tentative usage row; its invoice_id is
// patched once the invoice exists.
func (r *Repo) CreateStaffUsage(ctx context.Context, usage *discount.StaffUsage) error {
	sql, args, err := r.builder.
		Insert(staffUsageTable).
		Columns("id", "tenant_id", "employee_id", "invoice_id", "discount_amount", "used_at").
		Values(usage.ID, usage.TenantID, usage.EmployeeID, usage.InvoiceID, usage.DiscountAmount, usage.UsedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert staff usage: %w", err)
	}
	return nil
}

// AttachStaffUsageInvoice patches invoice_id on a tentative usage row.
func (r *Repo) AttachStaffUsageInvoice(ctx context.Context, tenantID string, usageID, invoiceID id.ID) error {
	sql, args, err := r.builder.
		Update(staffUsageTable).
		Set("invoice_id", invoiceID).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": usageID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("attach staff usage invoice: %w", err)
	}
	return nil
}
