package loyalty

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
)

type fakeLoyaltyRepo struct {
	rule *Rule
	txns []*Transaction
}

func (f *fakeLoyaltyRepo) GetActiveRule(ctx context.Context, tenantID string) (*Rule, error) {
	return f.rule, nil
}

func (f *fakeLoyaltyRepo) AppendTransaction(ctx context.Context, txn *Transaction) error {
	f.txns = append(f.txns, txn)
	return nil
}

func (f *fakeLoyaltyRepo) AttachInvoice(ctx context.Context, tenantID string, txnIDs []id.ID, invoiceID id.ID) error {
	return nil
}

func (f *fakeLoyaltyRepo) ListTransactions(ctx context.Context, tenantID string, customerID id.ID, limit uint64) ([]Transaction, error) {
	return nil, nil
}

type fakeCustomerRepo struct {
	points   int64
	lifetime int64
}

func (f *fakeCustomerRepo) GetByID(ctx context.Context, tenantID string, customerID id.ID) (*customer.Customer, error) {
	return nil, nil
}

func (f *fakeCustomerRepo) AdjustPoints(ctx context.Context, tenantID string, customerID id.ID, pointsDelta, lifetimeDelta int64) (int64, error) {
	if f.points+pointsDelta < 0 {
		return 0, apperror.NewConflict(apperror.CodeInsufficientPoints, "insufficient points")
	}
	f.points += pointsDelta
	f.lifetime += lifetimeDelta
	return f.points, nil
}

func (f *fakeCustomerRepo) RecordPurchase(ctx context.Context, tenantID string, customerID id.ID, amount types.Money) error {
	return nil
}

func TestEarnPoints(t *testing.T) {
	ppc := func(points int64, unit string) *Rule {
		return &Rule{PointsPerCurrency: points, CurrencyUnit: types.MustMoney(unit), IsActive: true}
	}

	tests := []struct {
		name  string
		rule  *Rule
		gross string
		want  int64
	}{
		{"default one per 100", nil, "450.00", 4},
		{"default floors", nil, "199.99", 1},
		{"default below unit", nil, "99.99", 0},
		{"rule one per 50", ppc(1, "50"), "450.00", 9},
		{"rule two per 100", ppc(2, "100"), "250.00", 5},
		{"rule floors product", ppc(3, "100"), "150.00", 4},
		{"zero gross", ppc(1, "100"), "0", 0},
		{"negative gross", nil, "-10", 0},
		{"inactive unit falls back", ppc(1, "0"), "450.00", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EarnPoints(tt.rule, types.MustMoney(tt.gross)))
		})
	}
}

func TestRedeem(t *testing.T) {
	now := time.Now().UTC()
	cust := &customer.Customer{
		ID:            id.New(),
		TenantID:      "t1",
		LoyaltyPoints: 100,
	}

	t.Run("zero points is a no-op", func(t *testing.T) {
		e := NewEngine(&fakeLoyaltyRepo{}, &fakeCustomerRepo{points: 100})
		res, err := e.Redeem(context.Background(), cust, 0, now)
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		e := NewEngine(&fakeLoyaltyRepo{}, &fakeCustomerRepo{points: 100})
		_, err := e.Redeem(context.Background(), cust, 150, now)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientPoints))
	})

	t.Run("deducts and records", func(t *testing.T) {
		repo := &fakeLoyaltyRepo{}
		customers := &fakeCustomerRepo{points: 100, lifetime: 500}
		e := NewEngine(repo, customers)

		res, err := e.Redeem(context.Background(), cust, 30, now)
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.True(t, types.MustMoney("30").Equal(res.Deduction))
		assert.Equal(t, int64(70), res.BalanceAfter)
		assert.Equal(t, int64(70), customers.points)
		// Redemption never touches lifetime points.
		assert.Equal(t, int64(500), customers.lifetime)

		require.Len(t, repo.txns, 1)
		txn := repo.txns[0]
		assert.Equal(t, TxnRedeem, txn.Type)
		assert.Equal(t, int64(-30), txn.Points)
		assert.Equal(t, int64(70), txn.BalanceAfter)
		// Written before the invoice exists.
		assert.Nil(t, txn.InvoiceID)
	})
}

func TestEarn(t *testing.T) {
	now := time.Now().UTC()
	custID := id.New()
	invID := id.New()

	t.Run("credits both balances", func(t *testing.T) {
		repo := &fakeLoyaltyRepo{rule: &Rule{PointsPerCurrency: 1, CurrencyUnit: types.MustMoney("100"), IsActive: true}}
		customers := &fakeCustomerRepo{points: 10, lifetime: 10}
		e := NewEngine(repo, customers)

		earned, err := e.Earn(context.Background(), "t1", custID, invID, types.MustMoney("450.00"), now)
		require.NoError(t, err)
		assert.Equal(t, int64(4), earned)
		assert.Equal(t, int64(14), customers.points)
		assert.Equal(t, int64(14), customers.lifetime)

		require.Len(t, repo.txns, 1)
		txn := repo.txns[0]
		assert.Equal(t, TxnEarn, txn.Type)
		assert.Equal(t, int64(4), txn.Points)
		require.NotNil(t, txn.InvoiceID)
		assert.Equal(t, invID, *txn.InvoiceID)
	})

	t.Run("zero earn appends nothing", func(t *testing.T) {
		repo := &fakeLoyaltyRepo{}
		e := NewEngine(repo, &fakeCustomerRepo{})
		earned, err := e.Earn(context.Background(), "t1", custID, invID, types.MustMoney("50.00"), now)
		require.NoError(t, err)
		assert.Equal(t, int64(0), earned)
		assert.Empty(t, repo.txns)
	})
}
