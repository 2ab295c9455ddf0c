// Package inventory_repo provides the PostgreSQL implementation of the
// stock row and movement store. The decrement is a single conditional
// statement so concurrent sales cannot oversell.
package inventory_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/domain/inventory"
	"vendura/internal/infrastructure/storage/postgres"
)

const (
	stockTable     = "inv_stock"
	movementsTable = "inv_stock_movements"
)

// Repo implements inventory.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates an inventory repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the stock row, or nil when the product has none.
func (r *Repo) Get(ctx context.Context, tenantID string, productID id.ID) (*inventory.Row, error) {
	sql, args, err := r.builder.
		Select("tenant_id", "product_id", "quantity", "reorder_level",
			"max_stock", "expiry_date", "updated_at").
		From(stockTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "product_id": productID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row inventory.Row
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select stock row: %w", err)
	}
	return &row, nil
}

// Decrement subtracts qty only when enough stock exists. A zero-row
// result is disambiguated by re-reading the row: absent means
// NO_INVENTORY_ROW, present means INSUFFICIENT_STOCK.
func (r *Repo) Decrement(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, int64, error) {
	const sql = `
		UPDATE inv_stock
		SET quantity = quantity - $1, updated_at = $2
		WHERE tenant_id = $3 AND product_id = $4 AND quantity >= $1
		RETURNING quantity, reorder_level`

	var newQty, reorder int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, qty, time.Now().UTC(), tenantID, productID).
		Scan(&newQty, &reorder)
	if err == nil {
		return newQty, reorder, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("decrement stock: %w", err)
	}

	row, getErr := r.Get(ctx, tenantID, productID)
	if getErr != nil {
		return 0, 0, getErr
	}
	if row == nil {
		return 0, 0, apperror.NewNoInventoryRow(productID)
	}
	return 0, 0, apperror.NewInsufficientStock(productID, qty, row.Quantity)
}

// Increase adds qty to an existing row.
func (r *Repo) Increase(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, error) {
	const sql = `
		UPDATE inv_stock
		SET quantity = quantity + $1, updated_at = $2
		WHERE tenant_id = $3 AND product_id = $4
		RETURNING quantity`

	var newQty int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, qty, time.Now().UTC(), tenantID, productID).Scan(&newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNoInventoryRow(productID)
		}
		return 0, fmt.Errorf("increase stock: %w", err)
	}
	return newQty, nil
}

// IncreaseOrCreate upserts the row, starting a new product at qty.
func (r *Repo) IncreaseOrCreate(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, error) {
	const sql = `
		INSERT INTO inv_stock (tenant_id, product_id, quantity, reorder_level, updated_at)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (tenant_id, product_id)
		DO UPDATE SET quantity = inv_stock.quantity + $3, updated_at = $4
		RETURNING quantity`

	var newQty int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, tenantID, productID, qty, time.Now().UTC()).Scan(&newQty)
	if err != nil {
		return 0, fmt.Errorf("upsert stock: %w", err)
	}
	return newQty, nil
}

// AppendMovements bulk-inserts journal entries via COPY when inside a
// transaction.
func (r *Repo) AppendMovements(ctx context.Context, movements []inventory.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	columns := []string{
		"id", "tenant_id", "product_id", "movement_type",
		"quantity", "reference_table", "reference_id", "created_at",
	}

	if r.txm.GetTx(ctx) != nil {
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.ID, m.TenantID, m.ProductID, m.MovementType,
				m.Quantity, m.ReferenceTable, m.ReferenceID, m.CreatedAt,
			})
		}
		inserter := postgres.NewBatchInserter(r.txm)
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, columns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(movementsTable).Columns(columns...)
	for _, m := range movements {
		q = q.Values(
			m.ID, m.TenantID, m.ProductID, m.MovementType,
			m.Quantity, m.ReferenceTable, m.ReferenceID, m.CreatedAt,
		)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// ListMovements returns recent journal entries, newest first.
func (r *Repo) ListMovements(ctx context.Context, tenantID string, productID *id.ID, limit uint64) ([]inventory.Movement, error) {
	if limit == 0 || limit > 500 {
		limit = 100
	}
	q := r.builder.
		Select("id", "tenant_id", "product_id", "movement_type",
			"quantity", "reference_table", "reference_id", "created_at").
		From(movementsTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit)
	if productID != nil {
		q = q.Where(squirrel.Eq{"product_id": *productID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []inventory.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}
