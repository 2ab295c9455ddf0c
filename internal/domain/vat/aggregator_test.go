package vat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendura/internal/core/types"
)

type fakeVATRepo struct {
	deltas  []Delta
	periods []string
}

func (f *fakeVATRepo) ApplyDelta(ctx context.Context, tenantID, period string, d Delta) error {
	f.deltas = append(f.deltas, d)
	f.periods = append(f.periods, period)
	return nil
}

func (f *fakeVATRepo) Get(ctx context.Context, tenantID, period string) (*Report, error) {
	return nil, nil
}

func TestPeriod(t *testing.T) {
	at := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03", Period(at))
}

func TestAggregatorSigns(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC)
	net := types.MustMoney("200.00")
	tax := types.MustMoney("10.00")

	repo := &fakeVATRepo{}
	agg := NewAggregator(repo)

	require.NoError(t, agg.RecordSale(ctx, "t1", at, net, tax))
	require.NoError(t, agg.RecordSalesReturn(ctx, "t1", at, net, tax))
	require.NoError(t, agg.RecordPurchase(ctx, "t1", at, net, tax))
	require.NoError(t, agg.RecordPurchaseReturn(ctx, "t1", at, net, tax))

	require.Len(t, repo.deltas, 4)
	for _, p := range repo.periods {
		assert.Equal(t, "2026-08", p)
	}

	sale, saleRet, pur, purRet := repo.deltas[0], repo.deltas[1], repo.deltas[2], repo.deltas[3]

	assert.True(t, net.Equal(sale.TotalSales))
	assert.True(t, tax.Equal(sale.SalesVAT))
	assert.True(t, sale.TotalPurchases.IsZero())

	assert.True(t, net.Neg().Equal(saleRet.TotalSales))
	assert.True(t, tax.Neg().Equal(saleRet.SalesVAT))

	assert.True(t, net.Equal(pur.TotalPurchases))
	assert.True(t, tax.Equal(pur.PurchaseVAT))
	assert.True(t, pur.TotalSales.IsZero())

	assert.True(t, net.Neg().Equal(purRet.TotalPurchases))
	assert.True(t, tax.Neg().Equal(purRet.PurchaseVAT))
}
