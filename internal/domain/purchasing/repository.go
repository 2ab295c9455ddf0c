package purchasing

import (
	"context"

	"vendura/internal/core/id"
)

// Repository persists the purchase side.
type Repository interface {
	CreatePurchase(ctx context.Context, p *Purchase) error
	InsertItems(ctx context.Context, items []PurchaseItem) error
	GetPurchase(ctx context.Context, tenantID string, purchaseID id.ID) (*Purchase, error)
	GetItems(ctx context.Context, tenantID string, purchaseID id.ID) ([]PurchaseItem, error)

	CreateReturn(ctx context.Context, ret *PurchaseReturn) error
	InsertReturnItems(ctx context.Context, items []PurchaseReturnItem) error

	// ReturnedQuantities sums previously returned quantities per product
	// for one purchase.
	ReturnedQuantities(ctx context.Context, tenantID string, purchaseID id.ID) (map[id.ID]int64, error)

	CreatePayment(ctx context.Context, p *SupplierPayment) error
}

// Numbering allocates purchase numbers. Implementations keep the
// counter at least as high as any number already committed.
type Numbering interface {
	NextPurchaseNumber(ctx context.Context, tenantID string, year int) (string, error)
}
