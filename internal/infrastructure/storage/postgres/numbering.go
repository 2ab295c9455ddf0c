package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"vendura/pkg/numerator"
)

// ctxQuerier routes numerator queries through the transaction in ctx,
// falling back to the pool.
type ctxQuerier struct {
	txm *TxManager
}

func (q ctxQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...)
}

// Numbering allocates invoice and purchase numbers from the atomic
// per-tenant sequence rows.
type Numbering struct {
	txm *TxManager
	svc *numerator.Service
}

// NewNumbering creates a numbering service.
func NewNumbering(txm *TxManager) *Numbering {
	return &Numbering{
		txm: txm,
		svc: numerator.New(ctxQuerier{txm: txm}),
	}
}

// NextInvoiceNumber allocates the next INV-YYYY-NNNN for the tenant.
func (n *Numbering) NextInvoiceNumber(ctx context.Context, tenantID string, year int) (string, error) {
	period := yearStart(year)
	return n.svc.Next(ctx, tenantID, numerator.DefaultConfig(numerator.PrefixInvoice), period)
}

// NextPurchaseNumber allocates the next PUR-YYYY-NNNN. Before
// allocating it bumps the counter to the highest number already
// committed, so rows imported ahead of the sequence never collide.
func (n *Numbering) NextPurchaseNumber(ctx context.Context, tenantID string, year int) (string, error) {
	period := yearStart(year)
	cfg := numerator.DefaultConfig(numerator.PrefixPurchase)

	var latest string
	err := n.txm.GetQuerier(ctx).QueryRow(ctx, `
		SELECT purchase_number FROM pur_purchases
		WHERE tenant_id = $1 AND purchase_number LIKE $2
		ORDER BY purchase_number DESC
		LIMIT 1
	`, tenantID, fmt.Sprintf("%s-%d-%%", cfg.Prefix, year)).Scan(&latest)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("read latest purchase number: %w", err)
	}
	if num := numerator.Parse(latest); num > 0 {
		if err := n.svc.Bump(ctx, tenantID, cfg, period, num); err != nil {
			return "", err
		}
	}

	return n.svc.Next(ctx, tenantID, cfg, period)
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
