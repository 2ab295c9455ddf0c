package sales

import (
	"context"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Repository persists invoices and sales returns.
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	InsertItems(ctx context.Context, items []InvoiceItem) error
	InsertDiscounts(ctx context.Context, discounts []InvoiceDiscount) error

	// GetInvoice fails with INVOICE_NOT_FOUND when absent.
	GetInvoice(ctx context.Context, tenantID string, invoiceID id.ID) (*Invoice, error)
	GetItems(ctx context.Context, tenantID string, invoiceID id.ID) ([]InvoiceItem, error)

	// SetPDFURL stamps the rendered receipt location, from the deferred
	// tail.
	SetPDFURL(ctx context.Context, tenantID string, invoiceID id.ID, url string) error

	CreateReturn(ctx context.Context, ret *Return) error
	InsertReturnItems(ctx context.Context, items []ReturnItem) error
	UpdateReturnTotal(ctx context.Context, tenantID string, returnID id.ID, total types.Money) error

	// ReturnedQuantities sums previously returned quantities per product
	// for one source invoice.
	ReturnedQuantities(ctx context.Context, tenantID string, invoiceID id.ID) (map[id.ID]int64, error)
}

// Numbering allocates formatted document numbers. Implementations must
// guarantee that no two committed invoices of a tenant share a number.
type Numbering interface {
	NextInvoiceNumber(ctx context.Context, tenantID string, year int) (string, error)
}
