// Package sales_repo provides the PostgreSQL implementation of the
// invoice and sales-return store.
package sales_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/sales"
	"vendura/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable    = "sales_invoices"
	itemsTable       = "sales_invoice_items"
	discountsTable   = "sales_invoice_discounts"
	returnsTable     = "sales_returns"
	returnItemsTable = "sales_return_items"
)

// Repo implements sales.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a sales repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateInvoice inserts the header. A unique constraint on
// (tenant_id, invoice_number) backs up the atomic counter; a violation
// surfaces as INVOICE_NUMBER_COLLISION.
func (r *Repo) CreateInvoice(ctx context.Context, inv *sales.Invoice) error {
	sql, args, err := r.builder.
		Insert(invoicesTable).
		Columns("id", "tenant_id", "invoice_number", "customer_id", "payment_method",
			"subtotal", "item_discount", "bill_discount", "coupon_discount",
			"tier_discount", "staff_discount", "redeemed_points",
			"final_amount", "handled_by", "pdf_url", "created_at").
		Values(inv.ID, inv.TenantID, inv.InvoiceNumber, inv.CustomerID, inv.PaymentMethod,
			inv.Subtotal, inv.ItemDiscount, inv.BillDiscount, inv.CouponDiscount,
			inv.TierDiscount, inv.StaffDiscount, inv.RedeemedPoints,
			inv.FinalAmount, inv.HandledBy, inv.PDFURL, inv.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewConflict(apperror.CodeInvoiceNumberCollision, "invoice number already taken").
				WithDetail("invoice_number", inv.InvoiceNumber)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// InsertItems bulk-inserts invoice lines via COPY.
func (r *Repo) InsertItems(ctx context.Context, items []sales.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	columns := []string{
		"id", "tenant_id", "invoice_id", "product_id", "name", "quantity",
		"price", "tax", "tax_amount", "discount_amount", "net_price", "total", "cost_price",
	}
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			it.ID, it.TenantID, it.InvoiceID, it.ProductID, it.Name, it.Quantity,
			it.Price, it.Tax, it.TaxAmount, it.DiscountAmount, it.NetPrice, it.Total, it.CostPrice,
		})
	}
	inserter := postgres.NewBatchInserter(r.txm)
	if _, err := inserter.CopyFromSlice(ctx, itemsTable, columns, rows); err != nil {
		return fmt.Errorf("copy invoice items: %w", err)
	}
	return nil
}

// InsertDiscounts inserts the fired-rule rows.
func (r *Repo) InsertDiscounts(ctx context.Context, discounts []sales.InvoiceDiscount) error {
	if len(discounts) == 0 {
		return nil
	}
	q := r.builder.Insert(discountsTable).
		Columns("id", "tenant_id", "invoice_id", "rule_id", "channel", "amount", "description")
	for _, d := range discounts {
		q = q.Values(d.ID, d.TenantID, d.InvoiceID, d.RuleID, d.Channel, d.Amount, d.Description)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice discounts: %w", err)
	}
	return nil
}

// GetInvoice fetches one header.
func (r *Repo) GetInvoice(ctx context.Context, tenantID string, invoiceID id.ID) (*sales.Invoice, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "invoice_number", "customer_id", "payment_method",
			"subtotal", "item_discount", "bill_discount", "coupon_discount",
			"tier_discount", "staff_discount", "redeemed_points",
			"final_amount", "handled_by", "pdf_url", "created_at").
		From(invoicesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": invoiceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv sales.Invoice
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &inv, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(apperror.CodeInvoiceNotFound, "invoice", invoiceID)
		}
		return nil, fmt.Errorf("select invoice: %w", err)
	}
	return &inv, nil
}

// GetItems fetches the lines of one invoice.
func (r *Repo) GetItems(ctx context.Context, tenantID string, invoiceID id.ID) ([]sales.InvoiceItem, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "invoice_id", "product_id", "name", "quantity",
			"price", "tax", "tax_amount", "discount_amount", "net_price", "total", "cost_price").
		From(itemsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "invoice_id": invoiceID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []sales.InvoiceItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select invoice items: %w", err)
	}
	return items, nil
}

// SetPDFURL stamps the rendered receipt location.
func (r *Repo) SetPDFURL(ctx context.Context, tenantID string, invoiceID id.ID, url string) error {
	sql, args, err := r.builder.
		Update(invoicesTable).
		Set("pdf_url", url).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": invoiceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set pdf url: %w", err)
	}
	return nil
}

// CreateReturn inserts the return header.
func (r *Repo) CreateReturn(ctx context.Context, ret *sales.Return) error {
	sql, args, err := r.builder.
		Insert(returnsTable).
		Columns("id", "tenant_id", "invoice_id", "customer_id", "refund_type",
			"total_refund", "handled_by", "created_at").
		Values(ret.ID, ret.TenantID, ret.InvoiceID, ret.CustomerID, ret.RefundType,
			ret.TotalRefund, ret.HandledBy, ret.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// InsertReturnItems inserts the return lines.
func (r *Repo) InsertReturnItems(ctx context.Context, items []sales.ReturnItem) error {
	if len(items) == 0 {
		return nil
	}
	q := r.builder.Insert(returnItemsTable).
		Columns("id", "tenant_id", "return_id", "product_id", "quantity",
			"price", "tax", "tax_amount", "total", "cost_price")
	for _, it := range items {
		q = q.Values(it.ID, it.TenantID, it.ReturnID, it.ProductID, it.Quantity,
			it.Price, it.Tax, it.TaxAmount, it.Total, it.CostPrice)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert return items: %w", err)
	}
	return nil
}

// UpdateReturnTotal fills the header total once line totals exist.
func (r *Repo) UpdateReturnTotal(ctx context.Context, tenantID string, returnID id.ID, total types.Money) error {
	sql, args, err := r.builder.
		Update(returnsTable).
		Set("total_refund", total).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": returnID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update return total: %w", err)
	}
	return nil
}

// ReturnedQuantities sums prior returns per product for one invoice.
func (r *Repo) ReturnedQuantities(ctx context.Context, tenantID string, invoiceID id.ID) (map[id.ID]int64, error) {
	const sql = `
		SELECT ri.product_id, COALESCE(SUM(ri.quantity), 0) AS qty
		FROM sales_return_items ri
		JOIN sales_returns sr ON sr.id = ri.return_id AND sr.tenant_id = ri.tenant_id
		WHERE sr.tenant_id = $1 AND sr.invoice_id = $2
		GROUP BY ri.product_id`

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql, tenantID, invoiceID)
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
