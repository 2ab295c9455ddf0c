// Package catalog_repo provides PostgreSQL implementations for the
// catalog read models.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vendura/internal/core/id"
	"vendura/internal/domain/catalogs/product"
	"vendura/internal/infrastructure/storage/postgres"
)

const productsTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewProductRepo creates a product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByIDs batch-fetches products, keyed by id. Absent ids are simply
// missing from the map; callers decide whether that is an error.
func (r *ProductRepo) GetByIDs(ctx context.Context, tenantID string, ids []id.ID) (map[id.ID]product.Product, error) {
	if len(ids) == 0 {
		return map[id.ID]product.Product{}, nil
	}

	sql, args, err := r.builder.
		Select("id", "tenant_id", "name", "cost_price", "selling_price", "tax", "created_at").
		From(productsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []product.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	out := make(map[id.ID]product.Product, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}
