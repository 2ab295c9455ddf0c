package catalog_repo

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
	"vendura/internal/core/types"
	"vendura/internal/domain/catalogs/customer"
	"vendura/internal/infrastructure/storage/postgres"
)

const customersTable = "cat_customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewCustomerRepo creates a customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID fetches one customer; fails with CUSTOMER_NOT_FOUND.
func (r *CustomerRepo) GetByID(ctx context.Context, tenantID string, customerID id.ID) (*customer.Customer, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "full_name", "membership_tier",
			"loyalty_points", "lifetime_points",
			"total_purchases", "total_spent", "last_purchase_at", "created_at").
		From(customersTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": customerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c customer.Customer
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(apperror.CodeCustomerNotFound, "customer", customerID)
		}
		return nil, fmt.Errorf("select customer: %w", err)
	}
	return &c, nil
}

// AdjustPoints applies both deltas in one conditional statement. The
// WHERE clause refuses a negative resulting balance, so concurrent
// redemptions race safely.
func (r *CustomerRepo) AdjustPoints(ctx context.Context, tenantID string, customerID id.ID, pointsDelta, lifetimeDelta int64) (int64, error) {
	const sql = `
		UPDATE cat_customers
		SET loyalty_points  = loyalty_points + $1,
		    lifetime_points = lifetime_points + $2
		WHERE tenant_id = $3 AND id = $4
		  AND loyalty_points + $1 >= 0
		RETURNING loyalty_points`

	var balance int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, pointsDelta, lifetimeDelta, tenantID, customerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewConflict(apperror.CodeInsufficientPoints, "point balance would go negative")
		}
		return 0, fmt.Errorf("adjust points: %w", err)
	}
	return balance, nil
}

// RecordPurchase bumps aggregate purchase stats.
func (r *CustomerRepo) RecordPurchase(ctx context.Context, tenantID string, customerID id.ID, amount types.Money) error {
	sql, args, err := r.builder.
		Update(customersTable).
		Set("total_purchases", squirrel.Expr("total_purchases + 1")).
		Set("total_spent", squirrel.Expr("total_spent + ?", amount)).
		Set("last_purchase_at", time.Now().UTC()).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": customerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}
	return nil
}
