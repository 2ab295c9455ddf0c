package accounting

import (
	"context"

	"vendura/internal/core/id"
)

// Repository persists the chart of accounts and the three books.
type Repository interface {
	// ListAccounts returns every account for the tenant.
	ListAccounts(ctx context.Context, tenantID string) ([]Account, error)

	// CreateAccounts inserts chart nodes, used by tenant bootstrap.
	CreateAccounts(ctx context.Context, accounts []Account) error

	// AppendJournal inserts journal pairs.
	AppendJournal(ctx context.Context, entries []JournalEntry) error

	// AppendLedger inserts ledger rows, computing each row's running
	// balance under per-account serialization. Callers fill Debit or
	// Credit and leave Balance zero.
	AppendLedger(ctx context.Context, entries []LedgerEntry) error

	// AppendDaybook inserts daybook rows.
	AppendDaybook(ctx context.Context, entries []DaybookEntry) error

	// JournalExists reports whether any journal pair with the given
	// reference has been posted for the tenant.
	JournalExists(ctx context.Context, tenantID, referenceType string, referenceID id.ID) (bool, error)
}
