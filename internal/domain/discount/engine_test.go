package discount

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/catalogs/customer"
	"vendura/internal/domain/pricing"
)

type fakeDiscountRepo struct {
	rules     []Rule
	staffRule *StaffRule

	couponUsed         int64
	couponUsedCustomer int64
	staffMonthTotal    types.Money

	staffUsages []*StaffUsage
}

func (f *fakeDiscountRepo) ListActiveRules(ctx context.Context, tenantID string) ([]Rule, error) {
	return f.rules, nil
}

func (f *fakeDiscountRepo) GetActiveStaffRule(ctx context.Context, tenantID string) (*StaffRule, error) {
	return f.staffRule, nil
}

func (f *fakeDiscountRepo) CouponUsageCount(ctx context.Context, tenantID string, couponID id.ID) (int64, error) {
	return f.couponUsed, nil
}

func (f *fakeDiscountRepo) CouponUsageCountByCustomer(ctx context.Context, tenantID string, couponID, customerID id.ID) (int64, error) {
	return f.couponUsedCustomer, nil
}

func (f *fakeDiscountRepo) RecordCouponUsage(ctx context.Context, tenantID string, couponID id.ID, customerID *id.ID, invoiceID id.ID, maxUses, perCustomerLimit *int64) error {
	return nil
}

func (f *fakeDiscountRepo) StaffUsageMonthTotal(ctx context.Context, tenantID string, employeeID id.ID, at time.Time) (types.Money, error) {
	return f.staffMonthTotal, nil
}

func (f *fakeDiscountRepo) CreateStaffUsage(ctx context.Context, usage *StaffUsage) error {
	f.staffUsages = append(f.staffUsages, usage)
	return nil
}

func (f *fakeDiscountRepo) AttachStaffUsageInvoice(ctx context.Context, tenantID string, usageID, invoiceID id.ID) error {
	return nil
}

type fakeDirectory struct {
	known map[id.ID]bool
}

func (f *fakeDirectory) Exists(ctx context.Context, tenantID string, employeeID id.ID) (bool, error) {
	return f.known[employeeID], nil
}

func item(pid id.ID, name string, qty int64, unitGross, tax string) pricing.Item {
	return pricing.Item{
		ProductID: pid,
		Name:      name,
		Qty:       qty,
		UnitGross: types.MustMoney(unitGross),
		TaxRate:   types.MustMoney(tax),
	}
}

func moneyPtr(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestApplyNoRules(t *testing.T) {
	e := NewEngine(&fakeDiscountRepo{}, &fakeDirectory{})
	pid := id.New()

	res, err := e.Apply(context.Background(), Input{
		TenantID: "t1",
		Items:    []pricing.Item{item(pid, "Soap", 2, "105.00", "5")},
		Now:      time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.True(t, types.MustMoney("210.00").Equal(res.Subtotal))
	assert.True(t, types.MustMoney("210.00").Equal(res.Total))
	assert.Empty(t, res.Applied)
}

func TestApplyItemRule(t *testing.T) {
	pid := id.New()
	repo := &fakeDiscountRepo{rules: []Rule{{
		ID: id.New(), TenantID: "t1", Type: RuleItem, Name: "10% off soap",
		DiscountPercent: moneyPtr("10"), ProductID: &pid, IsActive: true,
	}}}
	e := NewEngine(repo, &fakeDirectory{})

	res, err := e.Apply(context.Background(), Input{
		TenantID: "t1",
		Items:    []pricing.Item{item(pid, "Soap", 1, "100.00", "5")},
		Now:      time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.True(t, types.MustMoney("100.00").Equal(res.Subtotal))
	assert.True(t, types.MustMoney("10.00").Equal(res.ItemDiscountTotal))
	assert.True(t, types.MustMoney("90.00").Equal(res.Total))
	require.Len(t, res.Applied, 1)
	assert.Equal(t, ChannelItem, res.Applied[0].Channel)
}

func TestApplyItemRuleClampsToLineGross(t *testing.T) {
	pid := id.New()
	repo := &fakeDiscountRepo{rules: []Rule{{
		ID: id.New(), TenantID: "t1", Type: RuleItem, Name: "flat 80",
		DiscountAmount: moneyPtr("80"), ProductID: &pid, IsActive: true,
	}}}
	e := NewEngine(repo, &fakeDirectory{})

	// Fixed amount is per unit: 2 x 80 = 160, clamped to the 100 gross.
	res, err := e.Apply(context.Background(), Input{
		TenantID: "t1",
		Items:    []pricing.Item{item(pid, "Soap", 2, "50.00", "5")},
		Now:      time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.True(t, types.MustMoney("100.00").Equal(res.ItemDiscountTotal))
	assert.True(t, res.Total.IsZero())
}

func TestApplyBillRuleMinimum(t *testing.T) {
	pid := id.New()
	repo := &fakeDiscountRepo{rules: []Rule{{
		ID: id.New(), TenantID: "t1", Type: RuleBill, Name: "10% over 500",
		DiscountPercent: moneyPtr("10"), MinBillAmount: moneyPtr("500"), IsActive: true,
	}}}
	e := NewEngine(repo, &fakeDirectory{})

	res, err := e.Apply(context.Background(), Input{
		TenantID: "t1",
		Items:    []pricing.Item{item(pid, "Soap", 1, "400.00", "5")},
		Now:      time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.True(t, res.BillDiscountTotal.IsZero())
	assert.True(t, types.MustMoney("400.00").Equal(res.Total))
}

func TestApplyCouponAndTierAndRunningTotals(t *testing.T) {
	pid := id.New()
	coupon := Rule{
		ID: id.New(), TenantID: "t1", Type: RuleCoupon, Name: "SAVE10",
		DiscountPercent: moneyPtr("10"), Code: strPtr("SAVE10"), IsActive: true,
	}
	tier := Rule{
		ID: id.New(), TenantID: "t1", Type: RuleTier, Name: "gold 5%",
		DiscountPercent: moneyPtr("5"), Tier: strPtr("gold"), IsActive: true,
	}
	repo := &fakeDiscountRepo{rules: []Rule{coupon, tier}}
	e := NewEngine(repo, &fakeDirectory{})

	goldTier := "gold"
	res, err := e.Apply(context.Background(), Input{
		TenantID:   "t1",
		Items:      []pricing.Item{item(pid, "Basket", 1, "500.00", "5")},
		Customer:   &customer.Customer{ID: id.New(), TenantID: "t1", MembershipTier: &goldTier},
		CouponCode: strPtr("save10"), // match is case-insensitive
		Now:        time.Now().UTC(),
	})
	require.NoError(t, err)

	// 500 -> coupon 10% -> 450 -> gold 5% -> 427.50
	assert.True(t, types.MustMoney("50.00").Equal(res.CouponDiscount))
	assert.True(t, types.MustMoney("22.50").Equal(res.TierDiscount))
	assert.True(t, types.MustMoney("427.50").Equal(res.Total))
	require.NotNil(t, res.Coupon)
	assert.Equal(t, coupon.ID, res.Coupon.ID)
	assert.Len(t, res.Applied, 2)
}

func TestApplyCouponErrors(t *testing.T) {
	pid := id.New()
	now := time.Now().UTC()
	coupon := Rule{
		ID: id.New(), TenantID: "t1", Type: RuleCoupon, Name: "SAVE10",
		DiscountPercent: moneyPtr("10"), Code: strPtr("SAVE10"),
		MinBillAmount: moneyPtr("300"), MaxUses: int64Ptr(5), PerCustomerLimit: int64Ptr(1),
		IsActive: true,
	}
	items := []pricing.Item{item(pid, "Basket", 1, "500.00", "5")}
	cust := &customer.Customer{ID: id.New(), TenantID: "t1"}

	t.Run("unknown code", func(t *testing.T) {
		e := NewEngine(&fakeDiscountRepo{rules: []Rule{coupon}}, &fakeDirectory{})
		_, err := e.Apply(context.Background(), Input{
			TenantID: "t1", Items: items, CouponCode: strPtr("NOPE"), Now: now,
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidCoupon))
	})

	t.Run("below minimum bill", func(t *testing.T) {
		e := NewEngine(&fakeDiscountRepo{rules: []Rule{coupon}}, &fakeDirectory{})
		small := []pricing.Item{item(pid, "Basket", 1, "200.00", "5")}
		_, err := e.Apply(context.Background(), Input{
			TenantID: "t1", Items: small, CouponCode: strPtr("SAVE10"), Now: now,
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeCouponMinBill))
	})

	t.Run("global limit reached", func(t *testing.T) {
		e := NewEngine(&fakeDiscountRepo{rules: []Rule{coupon}, couponUsed: 5}, &fakeDirectory{})
		_, err := e.Apply(context.Background(), Input{
			TenantID: "t1", Items: items, CouponCode: strPtr("SAVE10"), Now: now,
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeCouponLimitGlobal))
	})

	t.Run("per-customer limit reached", func(t *testing.T) {
		e := NewEngine(&fakeDiscountRepo{rules: []Rule{coupon}, couponUsedCustomer: 1}, &fakeDirectory{})
		_, err := e.Apply(context.Background(), Input{
			TenantID: "t1", Items: items, Customer: cust, CouponCode: strPtr("SAVE10"), Now: now,
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeCouponLimitCustomer))
	})
}

func TestApplyStaff(t *testing.T) {
	pid := id.New()
	now := time.Now().UTC()
	empID := id.New()
	items := []pricing.Item{item(pid, "Basket", 1, "1000.00", "5")}

	staffRule := &StaffRule{
		ID: id.New(), TenantID: "t1",
		DiscountPercent: types.MustMoney("20"),
		MaxPerBill:      types.MustMoney("150"),
		MonthlyLimit:    types.MustMoney("500"),
		IsActive:        true,
	}

	t.Run("unknown employee", func(t *testing.T) {
		e := NewEngine(&fakeDiscountRepo{staffRule: staffRule}, &fakeDirectory{})
		_, err := e.Apply(context.Background(), Input{
			TenantID: "t1", Items: items, EmployeeID: &empID, Now: now,
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidEmployee))
	})

	t.Run("per-bill cap applies", func(t *testing.T) {
		repo := &fakeDiscountRepo{staffRule: staffRule}
		e := NewEngine(repo, &fakeDirectory{known: map[id.ID]bool{empID: true}})
		res, err := e.Apply(context.Background(), Input{
			TenantID: "t1", Items: items, EmployeeID: &empID, Now: now,
		})
		require.NoError(t, err)
		// 20% of 1000 = 200, capped per bill at 150.
		assert.True(t, types.MustMoney("150.00").Equal(res.StaffDiscount))
		assert.True(t, types.MustMoney("850.00").Equal(res.Total))
		require.NotNil(t, res.StaffUsageID)
		require.Len(t, repo.staffUsages, 1)
		assert.Nil(t, repo.staffUsages[0].InvoiceID)
	})

	t.Run("monthly budget clamps further", func(t *testing.T) {
		repo := &fakeDiscountRepo{staffRule: staffRule, staffMonthTotal: types.MustMoney("460")}
		e := NewEngine(repo, &fakeDirectory{known: map[id.ID]bool{empID: true}})
		res, err := e.Apply(context.Background(), Input{
			TenantID: "t1", Items: items, EmployeeID: &empID, Now: now,
		})
		require.NoError(t, err)
		// Only 500 - 460 = 40 left this month.
		assert.True(t, types.MustMoney("40.00").Equal(res.StaffDiscount))
	})

	t.Run("exhausted budget writes no usage row", func(t *testing.T) {
		repo := &fakeDiscountRepo{staffRule: staffRule, staffMonthTotal: types.MustMoney("500")}
		e := NewEngine(repo, &fakeDirectory{known: map[id.ID]bool{empID: true}})
		res, err := e.Apply(context.Background(), Input{
			TenantID: "t1", Items: items, EmployeeID: &empID, Now: now,
		})
		require.NoError(t, err)
		assert.True(t, res.StaffDiscount.IsZero())
		assert.Nil(t, res.StaffUsageID)
		assert.Empty(t, repo.staffUsages)
	})
}

func TestApplyStageOrder(t *testing.T) {
	pid := id.New()
	repo := &fakeDiscountRepo{rules: []Rule{
		{
			ID: id.New(), TenantID: "t1", Type: RuleItem, Name: "item 10%",
			DiscountPercent: moneyPtr("10"), ProductID: &pid, IsActive: true,
		},
		{
			ID: id.New(), TenantID: "t1", Type: RuleBill, Name: "bill 10%",
			DiscountPercent: moneyPtr("10"), IsActive: true,
		},
	}}
	e := NewEngine(repo, &fakeDirectory{})

	res, err := e.Apply(context.Background(), Input{
		TenantID: "t1",
		Items:    []pricing.Item{item(pid, "Basket", 1, "100.00", "5")},
		Now:      time.Now().UTC(),
	})
	require.NoError(t, err)

	// Bill stage sees the item-stage total: 10% of 90, not of 100.
	assert.True(t, types.MustMoney("10.00").Equal(res.ItemDiscountTotal))
	assert.True(t, types.MustMoney("9.00").Equal(res.BillDiscountTotal))
	assert.True(t, types.MustMoney("81.00").Equal(res.Total))
}
