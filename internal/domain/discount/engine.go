package discount

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/catalogs/customer"
	"vendura/internal/domain/catalogs/employee"
	"vendura/internal/domain/pricing"
	"vendura/pkg/logger"
)

// Input is one discount computation request.
type Input struct {
	TenantID   string
	Items      []pricing.Item
	Customer   *customer.Customer // nil for walk-in sales
	CouponCode *string
	EmployeeID *id.ID
	Now        time.Time
}

// LineResult is one working line after the item stage.
type LineResult struct {
	pricing.Item

	// ItemDiscount is the line-level item-rule discount, clamped so it
	// never exceeds the line gross.
	ItemDiscount types.Money
}

// Result carries everything downstream steps need.
type Result struct {
	Items []LineResult

	Subtotal          types.Money
	ItemDiscountTotal types.Money
	BillDiscountTotal types.Money
	CouponDiscount    types.Money
	TierDiscount      types.Money
	StaffDiscount     types.Money

	// Total is the running total after all five stages (before loyalty
	// redemption).
	Total types.Money

	// Applied lists every rule that fired, for invoice_discounts rows.
	Applied []Applied

	// Coupon is the coupon rule actually applied, or nil.
	Coupon *Rule

	// StaffUsageID references the tentative staff usage row, if one was
	// created; the coordinator patches its invoice id after insertion.
	StaffUsageID *id.ID
}

// Engine applies the discount stages.
type Engine struct {
	repo      Repository
	employees employee.Directory
}

// NewEngine creates a discount engine.
func NewEngine(repo Repository, employees employee.Directory) *Engine {
	return &Engine{repo: repo, employees: employees}
}

// Apply runs the five stages against the working items. Each stage rounds
// its running total to 2 decimals; the per-stage amounts are clamped so no
// stage can drive the total negative.
func (e *Engine) Apply(ctx context.Context, in Input) (*Result, error) {
	rules, err := e.repo.ListActiveRules(ctx, in.TenantID)
	if err != nil {
		return nil, fmt.Errorf("load discount rules: %w", err)
	}

	byType := make(map[RuleType][]Rule)
	for _, r := range rules {
		byType[r.Type] = append(byType[r.Type], r)
	}

	res := &Result{Items: make([]LineResult, 0, len(in.Items))}

	subtotal := types.Zero()
	for _, it := range in.Items {
		res.Items = append(res.Items, LineResult{Item: it})
		subtotal = subtotal.Add(it.LineGross())
	}
	res.Subtotal = types.Round2(subtotal)

	// Stage 1: item rules.
	for i := range res.Items {
		line := &res.Items[i]
		lineGross := line.LineGross()
		for _, r := range byType[RuleItem] {
			if r.ProductID == nil || *r.ProductID != line.ProductID {
				continue
			}
			if r.MinBillAmount != nil && res.Subtotal.LessThan(*r.MinBillAmount) {
				continue
			}
			amt := ruleAmount(r, lineGross, line.Qty)
			// Cumulative per-line discount never exceeds the line gross.
			remaining := lineGross.Sub(line.ItemDiscount)
			amt = types.MinMoney(amt, remaining)
			if !amt.IsPositive() {
				continue
			}
			line.ItemDiscount = line.ItemDiscount.Add(amt)
			res.Applied = append(res.Applied, Applied{
				RuleID:      r.ID,
				Channel:     ChannelItem,
				Amount:      amt,
				Description: r.Name,
			})
		}
		res.ItemDiscountTotal = res.ItemDiscountTotal.Add(line.ItemDiscount)
	}
	running := types.Round2(res.Subtotal.Sub(res.ItemDiscountTotal))

	// Stage 2: bill rules, evaluated against the total after item rules.
	afterItem := running
	for _, r := range byType[RuleBill] {
		if r.MinBillAmount != nil && afterItem.LessThan(*r.MinBillAmount) {
			continue
		}
		amt := ruleAmount(r, afterItem, 1)
		amt = types.MinMoney(amt, running)
		if !amt.IsPositive() {
			continue
		}
		res.BillDiscountTotal = res.BillDiscountTotal.Add(amt)
		running = types.Round2(running.Sub(amt))
		res.Applied = append(res.Applied, Applied{
			RuleID:      r.ID,
			Channel:     ChannelBill,
			Amount:      amt,
			Description: r.Name,
		})
	}

	// Stage 3: coupon (at most one).
	if in.CouponCode != nil && strings.TrimSpace(*in.CouponCode) != "" {
		coupon, amt, err := e.applyCoupon(ctx, in, byType[RuleCoupon], running)
		if err != nil {
			return nil, err
		}
		res.Coupon = coupon
		res.CouponDiscount = amt
		running = types.Round2(running.Sub(amt))
		res.Applied = append(res.Applied, Applied{
			RuleID:      coupon.ID,
			Channel:     ChannelCoupon,
			Amount:      amt,
			Description: fmt.Sprintf("coupon %s", strings.ToUpper(*coupon.Code)),
		})
	}

	// Stage 4: membership tier.
	if in.Customer != nil && in.Customer.MembershipTier != nil {
		tier := *in.Customer.MembershipTier
		for _, r := range byType[RuleTier] {
			if r.Tier == nil || !strings.EqualFold(*r.Tier, tier) {
				continue
			}
			amt := types.MinMoney(ruleAmount(r, running, 1), running)
			if !amt.IsPositive() {
				continue
			}
			res.TierDiscount = amt
			running = types.Round2(running.Sub(amt))
			res.Applied = append(res.Applied, Applied{
				RuleID:      r.ID,
				Channel:     ChannelTier,
				Amount:      amt,
				Description: r.Name,
			})
			break
		}
	}

	// Stage 5: staff discount.
	if in.EmployeeID != nil {
		amt, usageID, err := e.applyStaff(ctx, in, running)
		if err != nil {
			return nil, err
		}
		res.StaffDiscount = amt
		res.StaffUsageID = usageID
		running = types.Round2(running.Sub(amt))
	}

	res.Total = running
	return res, nil
}

// ruleAmount computes a rule's raw discount: percent of base, or fixed
// amount (multiplied by qty for item rules).
func ruleAmount(r Rule, base types.Money, qty int64) types.Money {
	if r.DiscountPercent != nil {
		return types.Percent(base, *r.DiscountPercent)
	}
	if r.DiscountAmount != nil {
		return types.Round2(r.DiscountAmount.Mul(decimal.NewFromInt(qty)))
	}
	return types.Zero()
}

func (e *Engine) applyCoupon(ctx context.Context, in Input, coupons []Rule, running types.Money) (*Rule, types.Money, error) {
	code := strings.TrimSpace(*in.CouponCode)

	var coupon *Rule
	for i := range coupons {
		if coupons[i].Code != nil && strings.EqualFold(*coupons[i].Code, code) {
			coupon = &coupons[i]
			break
		}
	}
	if coupon == nil {
		return nil, types.Zero(), apperror.NewValidation(apperror.CodeInvalidCoupon, "coupon code is not valid").
			WithDetail("code", code)
	}

	if coupon.MinBillAmount != nil && running.LessThan(*coupon.MinBillAmount) {
		return nil, types.Zero(), apperror.NewValidation(apperror.CodeCouponMinBill, "bill total is below the coupon minimum").
			WithDetail("min_bill_amount", coupon.MinBillAmount)
	}

	// Advisory cap checks. The definitive check happens when the usage row
	// is recorded with a conditional insert.
	if coupon.MaxUses != nil {
		used, err := e.repo.CouponUsageCount(ctx, in.TenantID, coupon.ID)
		if err != nil {
			return nil, types.Zero(), fmt.Errorf("coupon usage count: %w", err)
		}
		if used >= *coupon.MaxUses {
			return nil, types.Zero(), apperror.NewValidation(apperror.CodeCouponLimitGlobal, "coupon has reached its usage limit")
		}
	}
	if coupon.PerCustomerLimit != nil && in.Customer != nil {
		used, err := e.repo.CouponUsageCountByCustomer(ctx, in.TenantID, coupon.ID, in.Customer.ID)
		if err != nil {
			return nil, types.Zero(), fmt.Errorf("coupon customer usage count: %w", err)
		}
		if used >= *coupon.PerCustomerLimit {
			return nil, types.Zero(), apperror.NewValidation(apperror.CodeCouponLimitCustomer, "coupon has reached its per-customer limit")
		}
	}

	amt := types.MinMoney(ruleAmount(*coupon, running, 1), running)
	return coupon, amt, nil
}

func (e *Engine) applyStaff(ctx context.Context, in Input, running types.Money) (types.Money, *id.ID, error) {
	exists, err := e.employees.Exists(ctx, in.TenantID, *in.EmployeeID)
	if err != nil {
		return types.Zero(), nil, fmt.Errorf("employee lookup: %w", err)
	}
	if !exists {
		return types.Zero(), nil, apperror.NewValidation(apperror.CodeInvalidEmployee, "employee is not in the staff directory").
			WithDetail("employee_id", in.EmployeeID)
	}

	rule, err := e.repo.GetActiveStaffRule(ctx, in.TenantID)
	if err != nil {
		return types.Zero(), nil, fmt.Errorf("load staff rule: %w", err)
	}
	if rule == nil {
		return types.Zero(), nil, nil
	}

	amt := types.Percent(running, rule.DiscountPercent)
	if rule.MaxPerBill.IsPositive() {
		amt = types.MinMoney(amt, rule.MaxPerBill)
	}

	// Monthly budget: what the employee has left this calendar month.
	if rule.MonthlyLimit.IsPositive() {
		spent, err := e.repo.StaffUsageMonthTotal(ctx, in.TenantID, *in.EmployeeID, in.Now)
		if err != nil {
			return types.Zero(), nil, fmt.Errorf("staff monthly usage: %w", err)
		}
		budget := types.ClampNonNegative(rule.MonthlyLimit.Sub(spent))
		amt = types.MinMoney(amt, budget)
	}

	amt = types.MinMoney(types.ClampNonNegative(amt), running)
	if !amt.IsPositive() {
		return types.Zero(), nil, nil
	}

	usage := &StaffUsage{
		ID:             id.New(),
		TenantID:       in.TenantID,
		EmployeeID:     *in.EmployeeID,
		DiscountAmount: amt,
		UsedAt:         in.Now,
	}
	if err := e.repo.CreateStaffUsage(ctx, usage); err != nil {
		return types.Zero(), nil, fmt.Errorf("create staff usage: %w", err)
	}

	logger.Debug(ctx, "staff discount applied",
		"employee_id", in.EmployeeID,
		"amount", amt,
	)

	return amt, &usage.ID, nil
}
