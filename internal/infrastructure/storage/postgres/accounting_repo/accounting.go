// Package accounting_repo provides the PostgreSQL implementation of the
// books. Ledger appends serialize per (tenant, account) with a
// transaction-scoped advisory lock so running balances stay consistent
// under concurrent posting.
package accounting_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/accounting"
	"vendura/internal/infrastructure/storage/postgres"
)

const (
	accountsTable = "acc_accounts"
	journalTable  = "acc_journal_entries"
	ledgerTable   = "acc_ledger_entries"
	daybookTable  = "acc_daybook_entries"
)

// Repo implements accounting.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates an accounting repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListAccounts returns the tenant's chart of accounts.
func (r *Repo) ListAccounts(ctx context.Context, tenantID string) ([]accounting.Account, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "name", "account_type", "parent_id", "created_at").
		From(accountsTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var accounts []accounting.Account
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &accounts, sql, args...); err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	return accounts, nil
}

// CreateAccounts inserts chart nodes.
func (r *Repo) CreateAccounts(ctx context.Context, accounts []accounting.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	q := r.builder.Insert(accountsTable).
		Columns("id", "tenant_id", "name", "account_type", "parent_id", "created_at")
	for _, a := range accounts {
		q = q.Values(a.ID, a.TenantID, a.Name, a.Type, a.ParentID, a.CreatedAt)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert accounts: %w", err)
	}
	return nil
}

// AppendJournal inserts journal pairs.
func (r *Repo) AppendJournal(ctx context.Context, entries []accounting.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	q := r.builder.Insert(journalTable).
		Columns("id", "tenant_id", "entry_date", "debit_account_id", "credit_account_id",
			"amount", "narration", "reference_type", "reference_id")
	for _, e := range entries {
		q = q.Values(e.ID, e.TenantID, e.EntryDate, e.DebitAccountID, e.CreditAccountID,
			e.Amount, e.Narration, e.ReferenceType, e.ReferenceID)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert journal entries: %w", err)
	}
	return nil
}

// JournalExists reports whether a journal pair with the reference has
// already been posted for the tenant.
func (r *Repo) JournalExists(ctx context.Context, tenantID, referenceType string, referenceID id.ID) (bool, error) {
	sql, args, err := r.builder.
		Select("1").
		From(journalTable).
		Where(squirrel.Eq{
			"tenant_id":      tenantID,
			"reference_type": referenceType,
			"reference_id":   referenceID,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var one int
	err = pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &one, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query journal reference: %w", err)
	}
	return true, nil
}

// AppendLedger inserts ledger rows one by one, each under an advisory
// lock on (tenant, account). The balance is derived from the latest row
// and the account's normal side: assets and expenses grow on debit,
// the rest on credit.
func (r *Repo) AppendLedger(ctx context.Context, entries []accounting.LedgerEntry) error {
	q := r.txm.GetQuerier(ctx)
	for _, e := range entries {
		if _, err := q.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2::text, 0))`,
			e.TenantID, e.AccountID); err != nil {
			return fmt.Errorf("acquire ledger lock: %w", err)
		}

		prev, acctType, err := r.latestBalance(ctx, e)
		if err != nil {
			return err
		}

		balance := prev.Sub(e.Debit).Add(e.Credit)
		if accounting.NormalDebit(acctType) {
			balance = prev.Add(e.Debit).Sub(e.Credit)
		}

		sql, args, err := r.builder.
			Insert(ledgerTable).
			Columns("id", "tenant_id", "account_id", "entry_date",
				"debit", "credit", "balance", "reference_type", "reference_id").
			Values(e.ID, e.TenantID, e.AccountID, e.EntryDate,
				e.Debit, e.Credit, balance, e.ReferenceType, e.ReferenceID).
			ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}
	return nil
}

func (r *Repo) latestBalance(ctx context.Context, e accounting.LedgerEntry) (types.Money, string, error) {
	// The chain follows insertion order: ids are UUIDv7, generated at
	// insert time, so the newest id is the latest row even when a
	// business-dated entry_date sorts earlier.
	const balSQL = `
		SELECT balance FROM acc_ledger_entries
		WHERE tenant_id = $1 AND account_id = $2
		ORDER BY id DESC
		LIMIT 1`

	prev := types.Zero()
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, balSQL, e.TenantID, e.AccountID).Scan(&prev)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return types.Zero(), "", fmt.Errorf("read latest balance: %w", err)
	}

	var acctType string
	const typeSQL = `SELECT account_type FROM acc_accounts WHERE tenant_id = $1 AND id = $2`
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, typeSQL, e.TenantID, e.AccountID).Scan(&acctType); err != nil {
		return types.Zero(), "", fmt.Errorf("read account type: %w", err)
	}
	return prev, acctType, nil
}

// AppendDaybook inserts daybook rows.
func (r *Repo) AppendDaybook(ctx context.Context, entries []accounting.DaybookEntry) error {
	if len(entries) == 0 {
		return nil
	}
	q := r.builder.Insert(daybookTable).
		Columns("id", "tenant_id", "entry_date", "side", "account_name",
			"amount", "description", "reference_type", "reference_id")
	for _, e := range entries {
		q = q.Values(e.ID, e.TenantID, e.EntryDate, e.Side, e.AccountName,
			e.Amount, e.Description, e.ReferenceType, e.ReferenceID)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert daybook entries: %w", err)
	}
	return nil
}
