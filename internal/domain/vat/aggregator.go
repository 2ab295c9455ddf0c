package vat

import (
	"context"
	"time"

	"vendura/internal/core/types"
)

// Aggregator translates business events into period deltas.
type Aggregator struct {
	repo Repository
}

// NewAggregator creates an aggregator.
func NewAggregator(repo Repository) *Aggregator {
	return &Aggregator{repo: repo}
}

// RecordSale adds a sale's net and tax to the invoice month.
func (a *Aggregator) RecordSale(ctx context.Context, tenantID string, at time.Time, net, tax types.Money) error {
	return a.repo.ApplyDelta(ctx, tenantID, Period(at), Delta{TotalSales: net, SalesVAT: tax})
}

// RecordSalesReturn subtracts a return's net and tax from its month.
func (a *Aggregator) RecordSalesReturn(ctx context.Context, tenantID string, at time.Time, net, tax types.Money) error {
	return a.repo.ApplyDelta(ctx, tenantID, Period(at), Delta{TotalSales: net.Neg(), SalesVAT: tax.Neg()})
}

// RecordPurchase adds a purchase's net and tax to the purchase side.
func (a *Aggregator) RecordPurchase(ctx context.Context, tenantID string, at time.Time, net, tax types.Money) error {
	return a.repo.ApplyDelta(ctx, tenantID, Period(at), Delta{TotalPurchases: net, PurchaseVAT: tax})
}

// RecordPurchaseReturn subtracts a purchase return from the purchase side.
func (a *Aggregator) RecordPurchaseReturn(ctx context.Context, tenantID string, at time.Time, net, tax types.Money) error {
	return a.repo.ApplyDelta(ctx, tenantID, Period(at), Delta{TotalPurchases: net.Neg(), PurchaseVAT: tax.Neg()})
}
