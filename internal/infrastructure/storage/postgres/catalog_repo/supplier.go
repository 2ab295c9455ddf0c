package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/domain/catalogs/supplier"
	"vendura/internal/infrastructure/storage/postgres"
)

const suppliersTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSupplierRepo creates a supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID fetches one supplier.
func (r *SupplierRepo) GetByID(ctx context.Context, tenantID string, supplierID id.ID) (*supplier.Supplier, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "name", "created_at").
		From(suppliersTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": supplierID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s supplier.Supplier
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(apperror.CodeNotFound, "supplier", supplierID)
		}
		return nil, fmt.Errorf("select supplier: %w", err)
	}
	return &s, nil
}
