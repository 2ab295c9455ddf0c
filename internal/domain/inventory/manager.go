package inventory

import (
	"context"
	"fmt"
	"time"

	"vendura/internal/core/id"
	"vendura/pkg/logger"
)

// Reference tables for movement provenance.
const (
	RefSalesInvoices   = "sales_invoices"
	RefSalesReturns    = "sales_returns"
	RefPurchases       = "purchases"
	RefPurchaseReturns = "purchase_returns"
)

// Line is one quantity change for a single product.
type Line struct {
	ProductID id.ID
	Qty       int64
}

// Manager applies stock changes for the document pipelines and journals
// every delta.
type Manager struct {
	repo Repository
}

// NewManager creates an inventory manager.
func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

// DeductForSale decrements stock for every sold line, collects low-stock
// alerts, and journals negative movements referencing the invoice. Any
// failing line fails the whole call; the surrounding transaction rolls
// back earlier decrements.
func (m *Manager) DeductForSale(ctx context.Context, tenantID string, invoiceID id.ID, lines []Line, now time.Time) ([]LowStockAlert, error) {
	var alerts []LowStockAlert
	movements := make([]Movement, 0, len(lines))

	for _, ln := range lines {
		newQty, reorder, err := m.repo.Decrement(ctx, tenantID, ln.ProductID, ln.Qty)
		if err != nil {
			return nil, err
		}
		if newQty <= reorder {
			alerts = append(alerts, LowStockAlert{
				ProductID:    ln.ProductID,
				NewQty:       newQty,
				ReorderLevel: reorder,
			})
		}
		movements = append(movements, Movement{
			ID:             id.New(),
			TenantID:       tenantID,
			ProductID:      ln.ProductID,
			MovementType:   MoveSale,
			Quantity:       -ln.Qty,
			ReferenceTable: RefSalesInvoices,
			ReferenceID:    invoiceID,
			CreatedAt:      now,
		})
	}

	if err := m.repo.AppendMovements(ctx, movements); err != nil {
		return nil, fmt.Errorf("journal sale movements: %w", err)
	}
	if len(alerts) > 0 {
		logger.Warn(ctx, "low stock after sale", "invoice_id", invoiceID, "alerts", len(alerts))
	}
	return alerts, nil
}

// RestockForReturn adds returned quantities back and journals positive
// sale_return movements.
func (m *Manager) RestockForReturn(ctx context.Context, tenantID string, returnID id.ID, lines []Line, now time.Time) error {
	movements := make([]Movement, 0, len(lines))
	for _, ln := range lines {
		if _, err := m.repo.Increase(ctx, tenantID, ln.ProductID, ln.Qty); err != nil {
			return err
		}
		movements = append(movements, Movement{
			ID:             id.New(),
			TenantID:       tenantID,
			ProductID:      ln.ProductID,
			MovementType:   MoveSaleReturn,
			Quantity:       ln.Qty,
			ReferenceTable: RefSalesReturns,
			ReferenceID:    returnID,
			CreatedAt:      now,
		})
	}
	if err := m.repo.AppendMovements(ctx, movements); err != nil {
		return fmt.Errorf("journal return movements: %w", err)
	}
	return nil
}

// ReceiveForPurchase adds purchased quantities, creating rows for
// first-time products, and journals positive purchase movements.
func (m *Manager) ReceiveForPurchase(ctx context.Context, tenantID string, purchaseID id.ID, lines []Line, now time.Time) error {
	movements := make([]Movement, 0, len(lines))
	for _, ln := range lines {
		if _, err := m.repo.IncreaseOrCreate(ctx, tenantID, ln.ProductID, ln.Qty); err != nil {
			return err
		}
		movements = append(movements, Movement{
			ID:             id.New(),
			TenantID:       tenantID,
			ProductID:      ln.ProductID,
			MovementType:   MovePurchase,
			Quantity:       ln.Qty,
			ReferenceTable: RefPurchases,
			ReferenceID:    purchaseID,
			CreatedAt:      now,
		})
	}
	if err := m.repo.AppendMovements(ctx, movements); err != nil {
		return fmt.Errorf("journal purchase movements: %w", err)
	}
	return nil
}

// ReturnToSupplier removes quantities sent back to a supplier and
// journals negative purchase_return movements.
func (m *Manager) ReturnToSupplier(ctx context.Context, tenantID string, returnID id.ID, lines []Line, now time.Time) error {
	movements := make([]Movement, 0, len(lines))
	for _, ln := range lines {
		if _, _, err := m.repo.Decrement(ctx, tenantID, ln.ProductID, ln.Qty); err != nil {
			return err
		}
		movements = append(movements, Movement{
			ID:             id.New(),
			TenantID:       tenantID,
			ProductID:      ln.ProductID,
			MovementType:   MovePurchaseReturn,
			Quantity:       -ln.Qty,
			ReferenceTable: RefPurchaseReturns,
			ReferenceID:    returnID,
			CreatedAt:      now,
		})
	}
	if err := m.repo.AppendMovements(ctx, movements); err != nil {
		return fmt.Errorf("journal purchase return movements: %w", err)
	}
	return nil
}
