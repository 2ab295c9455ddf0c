package loyalty

import (
	"context"

	"vendura/internal/core/id"
)

// Repository persists loyalty rules and the transaction ledger.
type Repository interface {
	// GetActiveRule returns the tenant's single active rule, or nil when
	// none is configured.
	GetActiveRule(ctx context.Context, tenantID string) (*Rule, error)

	// AppendTransaction inserts one ledger entry.
	AppendTransaction(ctx context.Context, txn *Transaction) error

	// AttachInvoice patches invoice_id on the given entries. Redeem
	// entries are written before the invoice row exists, so their
	// invoice_id starts out null.
	AttachInvoice(ctx context.Context, tenantID string, txnIDs []id.ID, invoiceID id.ID) error

	// ListTransactions returns a customer's ledger, newest first.
	ListTransactions(ctx context.Context, tenantID string, customerID id.ID, limit uint64) ([]Transaction, error)
}
