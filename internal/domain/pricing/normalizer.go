// Package pricing builds authoritative working line items from a sale
// request. Client-supplied prices are never trusted; unit price, tax rate
// and cost price are re-derived from the product catalog.
package pricing

import (
	"context"
	"fmt"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/catalogs/product"
)

// RequestItem is one raw line from the create-invoice request.
type RequestItem struct {
	ProductID id.ID `json:"product_id"`
	Qty       int64 `json:"qty"`
}

// Item is one normalized working line.
type Item struct {
	ProductID id.ID
	Name      string
	Qty       int64

	// UnitGross is the VAT-inclusive unit selling price.
	UnitGross types.Money

	// TaxRate is the VAT rate percent.
	TaxRate types.Money

	// CostPrice is the per-unit cost, used for COGS.
	CostPrice types.Money
}

// LineGross returns the VAT-inclusive line total before discounts.
func (i Item) LineGross() types.Money {
	return types.Round2(i.UnitGross.Mul(types.NewMoney(float64(i.Qty))))
}

// LineCost returns qty x cost_price.
func (i Item) LineCost() types.Money {
	return types.Round2(i.CostPrice.Mul(types.NewMoney(float64(i.Qty))))
}

// Normalizer resolves request items against the product catalog.
type Normalizer struct {
	products product.Repository
}

// NewNormalizer creates a pricing normalizer.
func NewNormalizer(products product.Repository) *Normalizer {
	return &Normalizer{products: products}
}

// Normalize validates quantities, batch-fetches all referenced products and
// merges duplicate product lines. Fails with INVALID_QTY on non-positive
// quantities and PRODUCT_NOT_FOUND if any id is absent from the catalog.
func (n *Normalizer) Normalize(ctx context.Context, tenantID string, reqItems []RequestItem) ([]Item, error) {
	if len(reqItems) == 0 {
		return nil, apperror.NewValidation(apperror.CodeEmptyItems, "at least one item is required")
	}

	ids := make([]id.ID, 0, len(reqItems))
	merged := make(map[id.ID]int64, len(reqItems))
	for _, ri := range reqItems {
		if ri.Qty <= 0 {
			return nil, apperror.NewValidation(apperror.CodeInvalidQty, "quantity must be positive").
				WithDetail("product_id", ri.ProductID)
		}
		if _, seen := merged[ri.ProductID]; !seen {
			ids = append(ids, ri.ProductID)
		}
		merged[ri.ProductID] += ri.Qty
	}

	catalog, err := n.products.GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	items := make([]Item, 0, len(ids))
	for _, pid := range ids {
		p, ok := catalog[pid]
		if !ok {
			return nil, apperror.NewNotFound(apperror.CodeProductNotFound, "product", pid)
		}
		items = append(items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       merged[pid],
			UnitGross: p.SellingPrice,
			TaxRate:   p.Tax,
			CostPrice: p.CostPrice,
		})
	}

	return items, nil
}
