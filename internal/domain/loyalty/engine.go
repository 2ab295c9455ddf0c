package loyalty

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/catalogs/customer"
	"vendura/pkg/logger"
)

var defaultUnit = decimal.NewFromInt(100)

// Engine validates and records redemptions and computes earned points.
type Engine struct {
	repo      Repository
	customers customer.Repository
}

// NewEngine creates a loyalty engine.
func NewEngine(repo Repository, customers customer.Repository) *Engine {
	return &Engine{repo: repo, customers: customers}
}

// RedeemResult reports a recorded redemption.
type RedeemResult struct {
	// Deduction is the monetary value taken off the running total. One
	// point equals one currency unit; the caller clamps the total at zero.
	Deduction types.Money

	// TxnID is the redeem ledger entry, written with a null invoice id
	// and patched once the invoice row exists.
	TxnID id.ID

	BalanceAfter int64
}

// Redeem deducts points from the customer and appends a redeem ledger
// entry. Lifetime points are untouched. The balance check is conditional
// at the row level, so concurrent redemptions cannot drive it negative.
func (e *Engine) Redeem(ctx context.Context, cust *customer.Customer, points int64, now time.Time) (*RedeemResult, error) {
	if points <= 0 {
		return nil, nil
	}
	if cust.LoyaltyPoints < points {
		return nil, insufficientPoints(points, cust.LoyaltyPoints)
	}

	balance, err := e.customers.AdjustPoints(ctx, cust.TenantID, cust.ID, -points, 0)
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		// The conditional update found too few points after our read.
		return nil, insufficientPoints(points, cust.LoyaltyPoints)
	}

	txn := &Transaction{
		ID:           id.New(),
		TenantID:     cust.TenantID,
		CustomerID:   cust.ID,
		Type:         TxnRedeem,
		Points:       -points,
		BalanceAfter: balance,
		CreatedAt:    now,
	}
	if err := e.repo.AppendTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("append redeem transaction: %w", err)
	}

	return &RedeemResult{
		Deduction:    decimal.NewFromInt(points),
		TxnID:        txn.ID,
		BalanceAfter: balance,
	}, nil
}

// EarnPoints computes points for a finished sale: floor of
// (final_gross / currency_unit) * points_per_currency, defaulting to one
// point per 100 currency units when the tenant has no rule.
func EarnPoints(rule *Rule, finalGross types.Money) int64 {
	if finalGross.Sign() <= 0 {
		return 0
	}
	if rule == nil || rule.CurrencyUnit.Sign() <= 0 || rule.PointsPerCurrency <= 0 {
		return finalGross.Div(defaultUnit).Floor().IntPart()
	}
	return finalGross.Div(rule.CurrencyUnit).
		Mul(decimal.NewFromInt(rule.PointsPerCurrency)).
		Floor().IntPart()
}

// Earn credits points for an invoice and appends the earn ledger entry.
// Runs in the deferred tail, after the invoice has been committed.
func (e *Engine) Earn(ctx context.Context, tenantID string, customerID, invoiceID id.ID, finalGross types.Money, now time.Time) (int64, error) {
	rule, err := e.repo.GetActiveRule(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("load loyalty rule: %w", err)
	}

	earn := EarnPoints(rule, finalGross)
	if earn == 0 {
		return 0, nil
	}

	balance, err := e.customers.AdjustPoints(ctx, tenantID, customerID, earn, earn)
	if err != nil {
		return 0, fmt.Errorf("credit points: %w", err)
	}

	txn := &Transaction{
		ID:           id.New(),
		TenantID:     tenantID,
		CustomerID:   customerID,
		Type:         TxnEarn,
		Points:       earn,
		BalanceAfter: balance,
		InvoiceID:    &invoiceID,
		CreatedAt:    now,
	}
	if err := e.repo.AppendTransaction(ctx, txn); err != nil {
		return 0, fmt.Errorf("append earn transaction: %w", err)
	}

	logger.Debug(ctx, "loyalty points earned",
		"customer_id", customerID,
		"points", earn,
		"balance", balance,
	)
	return earn, nil
}

func insufficientPoints(requested, available int64) *apperror.AppError {
	return apperror.NewValidation(apperror.CodeInsufficientPoints, "customer has too few loyalty points").
		WithDetail("requested", requested).
		WithDetail("available", available)
}
