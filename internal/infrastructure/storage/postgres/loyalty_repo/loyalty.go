// Package loyalty_repo provides the PostgreSQL implementation of the
// loyalty rule and transaction store.
package loyalty_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vendura/internal/core/id"
	"vendura/internal/domain/loyalty"
	"vendura/internal/infrastructure/storage/postgres"
)

const (
	rulesTable        = "loy_rules"
	transactionsTable = "loy_transactions"
)

// Repo implements loyalty.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a loyalty repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetActiveRule returns the tenant's single active rule, or nil.
func (r *Repo) GetActiveRule(ctx context.Context, tenantID string) (*loyalty.Rule, error) {
	sql, args, err := r.builder.
		Select("id", "tenant_id", "points_per_currency", "currency_unit", "is_active", "created_at").
		From(rulesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rules []loyalty.Rule
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rules, sql, args...); err != nil {
		return nil, fmt.Errorf("select loyalty rule: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

// AppendTransaction inserts one ledger entry.
func (r *Repo) AppendTransaction(ctx context.Context, txn *loyalty.Transaction) error {
	sql, args, err := r.builder.
		Insert(transactionsTable).
		Columns("id", "tenant_id", "customer_id", "transaction_type",
			"points", "balance_after", "invoice_id", "created_at").
		Values(txn.ID, txn.TenantID, txn.CustomerID, txn.Type,
			txn.Points, txn.BalanceAfter, txn.InvoiceID, txn.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert loyalty transaction: %w", err)
	}
	return nil
}

// AttachInvoice patches invoice_id on entries written before the
// invoice row existed.
func (r *Repo) AttachInvoice(ctx context.Context, tenantID string, txnIDs []id.ID, invoiceID id.ID) error {
	if len(txnIDs) == 0 {
		return nil
	}
	sql, args, err := r.builder.
		Update(transactionsTable).
		Set("invoice_id", invoiceID).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": txnIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("attach invoice to loyalty transactions: %w", err)
	}
	return nil
}

// ListTransactions returns a customer's ledger, newest first.
func (r *Repo) ListTransactions(ctx context.Context, tenantID string, customerID id.ID, limit uint64) ([]loyalty.Transaction, error) {
	if limit == 0 || limit > 500 {
		limit = 100
	}
	sql, args, err := r.builder.
		Select("id", "tenant_id", "customer_id", "transaction_type",
			"points", "balance_after", "invoice_id", "created_at").
		From(transactionsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "customer_id": customerID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txns []loyalty.Transaction
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &txns, sql, args...); err != nil {
		return nil, fmt.Errorf("select loyalty transactions: %w", err)
	}
	return txns, nil
}
