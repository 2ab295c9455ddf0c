// Package vat_repo provides the PostgreSQL implementation of the VAT
// report store. Deltas land in a single upsert-and-increment statement
// so concurrent events in the same period never lose updates.
package vat_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"vendura/internal/core/id"
	"vendura/internal/domain/vat"
	"vendura/internal/infrastructure/storage/postgres"
)

const reportsTable = "vat_reports"

// Repo implements vat.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a VAT report repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ApplyDelta upserts the period row and folds the delta in atomically,
// recomputing vat_payable in the same statement.
func (r *Repo) ApplyDelta(ctx context.Context, tenantID, period string, d vat.Delta) error {
	const sql = `
		INSERT INTO vat_reports
			(id, tenant_id, period, total_sales, sales_vat, total_purchases, purchase_vat, vat_payable, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $5 - $7, $8)
		ON CONFLICT (tenant_id, period) DO UPDATE SET
			total_sales     = vat_reports.total_sales + $4,
			sales_vat       = vat_reports.sales_vat + $5,
			total_purchases = vat_reports.total_purchases + $6,
			purchase_vat    = vat_reports.purchase_vat + $7,
			vat_payable     = vat_reports.sales_vat + $5 - (vat_reports.purchase_vat + $7),
			updated_at      = $8`

	_, err := r.txm.GetQuerier(ctx).Exec(ctx, sql,
		id.New(), tenantID, period,
		d.TotalSales, d.SalesVAT, d.TotalPurchases, d.PurchaseVAT,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("apply vat delta: %w", err)
	}
	return nil
}

// Get returns the period row, or nil when the period has no activity.
func (r *Repo) Get(ctx context.Context, tenantID, period string) (*vat.Report, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "period", "total_sales", "sales_vat",
			"total_purchases", "purchase_vat", "vat_payable", "updated_at").
		From(reportsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "period": period}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rep vat.Report
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rep, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select vat report: %w", err)
	}
	return &rep, nil
}
