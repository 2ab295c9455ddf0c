// Package purchase_repo provides the PostgreSQL implementation of the
// purchase-side store.
package purchase_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/domain/purchasing"
	"vendura/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable   = "pur_purchases"
	itemsTable       = "pur_purchase_items"
	returnsTable     = "pur_purchase_returns"
	returnItemsTable = "pur_purchase_return_items"
	paymentsTable    = "pur_supplier_payments"
)

// Repo implements purchasing.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a purchase repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreatePurchase inserts the header.
func (r *Repo) CreatePurchase(ctx context.Context, p *purchasing.Purchase) error {
	sql, args, err := r.builder.
		Insert(purchasesTable).
		Columns("id", "tenant_id", "purchase_number", "supplier_id", "payment_method",
			"net_total", "tax_total", "total_amount", "handled_by", "created_at").
		Values(p.ID, p.TenantID, p.PurchaseNumber, p.SupplierID, p.PaymentMethod,
			p.NetTotal, p.TaxTotal, p.TotalAmount, p.HandledBy, p.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// InsertItems bulk-inserts purchase lines via COPY.
func (r *Repo) InsertItems(ctx context.Context, items []purchasing.PurchaseItem) error {
	if len(items) == 0 {
		return nil
	}
	columns := []string{
		"id", "tenant_id", "purchase_id", "product_id", "quantity",
		"unit_cost", "tax", "tax_amount", "total",
	}
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			it.ID, it.TenantID, it.PurchaseID, it.ProductID, it.Quantity,
			it.UnitCost, it.Tax, it.TaxAmount, it.Total,
		})
	}
	inserter := postgres.NewBatchInserter(r.txm)
	if _, err := inserter.CopyFromSlice(ctx, itemsTable, columns, rows); err != nil {
		return fmt.Errorf("copy purchase items: %w", err)
	}
	return nil
}

// GetPurchase fetches one header.
func (r *Repo) GetPurchase(ctx context.Context, tenantID string, purchaseID id.ID) (*purchasing.Purchase, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "purchase_number", "supplier_id", "payment_method",
			"net_total", "tax_total", "total_amount", "handled_by", "created_at").
		From(purchasesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": purchaseID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p purchasing.Purchase
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(apperror.CodeNotFound, "purchase", purchaseID)
		}
		return nil, fmt.Errorf("select purchase: %w", err)
	}
	return &p, nil
}

// GetItems fetches the lines of one purchase.
func (r *Repo) GetItems(ctx context.Context, tenantID string, purchaseID id.ID) ([]purchasing.PurchaseItem, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "purchase_id", "product_id", "quantity",
			"unit_cost", "tax", "tax_amount", "total").
		From(itemsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "purchase_id": purchaseID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []purchasing.PurchaseItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchase items: %w", err)
	}
	return items, nil
}

// CreateReturn inserts the return header.
func (r *Repo) CreateReturn(ctx context.Context, ret *purchasing.PurchaseReturn) error {
	sql, args, err := r.builder.
		Insert(returnsTable).
		Columns("id", "tenant_id", "purchase_id", "supplier_id",
			"net_total", "tax_total", "total", "handled_by", "created_at").
		Values(ret.ID, ret.TenantID, ret.PurchaseID, ret.SupplierID,
			ret.NetTotal, ret.TaxTotal, ret.Total, ret.HandledBy, ret.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase return: %w", err)
	}
	return nil
}

// InsertReturnItems inserts the return lines.
func (r *Repo) InsertReturnItems(ctx context.Context, items []purchasing.PurchaseReturnItem) error {
	if len(items) == 0 {
		return nil
	}
	q := r.builder.Insert(returnItemsTable).
		Columns("id", "tenant_id", "return_id", "product_id", "quantity",
			"unit_cost", "tax", "tax_amount", "total")
	for _, it := range items {
		q = q.Values(it.ID, it.TenantID, it.ReturnID, it.ProductID, it.Quantity,
			it.UnitCost, it.Tax, it.TaxAmount, it.Total)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase return items: %w", err)
	}
	return nil
}

// ReturnedQuantities sums prior returns per product for one purchase.
func (r *Repo) ReturnedQuantities(ctx context.Context, tenantID string, purchaseID id.ID) (map[id.ID]int64, error) {
	const sql = `
		SELECT ri.product_id, COALESCE(SUM(ri.quantity), 0) AS qty
		FROM pur_purchase_return_items ri
		JOIN pur_purchase_returns pr ON pr.id = ri.return_id AND pr.tenant_id = ri.tenant_id
		WHERE pr.tenant_id = $1 AND pr.purchase_id = $2
		GROUP BY ri.product_id`

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql, tenantID, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("select returned quantities: %w", err)
	}
	defer rows.Close()

	out := make(map[id.ID]int64)
	for rows.Next() {
		var pid id.ID
		var qty int64
		if err := rows.Scan(&pid, &qty); err != nil {
			return nil, fmt.Errorf("scan returned quantity: %w", err)
		}
		out[pid] = qty
	}
	return out, rows.Err()
}

// CreatePayment inserts a supplier payment.
func (r *Repo) CreatePayment(ctx context.Context, p *purchasing.SupplierPayment) error {
	sql, args, err := r.builder.
		Insert(paymentsTable).
		Columns("id", "tenant_id", "supplier_id", "amount", "method", "notes", "paid_at").
		Values(p.ID, p.TenantID, p.SupplierID, p.Amount, p.Method, p.Notes, p.PaidAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert supplier payment: %w", err)
	}
	return nil
}
