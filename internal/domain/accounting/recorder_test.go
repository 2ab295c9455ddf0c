package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

type fakeRepo struct {
	accounts []Account
	journal  []JournalEntry
	ledger   []LedgerEntry
	daybook  []DaybookEntry
}

func (f *fakeRepo) ListAccounts(ctx context.Context, tenantID string) ([]Account, error) {
	return f.accounts, nil
}

func (f *fakeRepo) CreateAccounts(ctx context.Context, accounts []Account) error {
	f.accounts = append(f.accounts, accounts...)
	return nil
}

func (f *fakeRepo) AppendJournal(ctx context.Context, entries []JournalEntry) error {
	f.journal = append(f.journal, entries...)
	return nil
}

func (f *fakeRepo) AppendLedger(ctx context.Context, entries []LedgerEntry) error {
	f.ledger = append(f.ledger, entries...)
	return nil
}

func (f *fakeRepo) AppendDaybook(ctx context.Context, entries []DaybookEntry) error {
	f.daybook = append(f.daybook, entries...)
	return nil
}

func (f *fakeRepo) JournalExists(ctx context.Context, tenantID, referenceType string, referenceID id.ID) (bool, error) {
	for _, e := range f.journal {
		if e.TenantID == tenantID && e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

var _ Repository = (*fakeRepo)(nil)

func seededRepo(t *testing.T) *fakeRepo {
	t.Helper()
	repo := &fakeRepo{}
	require.NoError(t, NewBootstrapper(repo).EnsureChart(context.Background(), "t1"))
	return repo
}

func loadChart(t *testing.T, r *Recorder) Chart {
	t.Helper()
	chart, err := r.LoadChart(context.Background(), "t1")
	require.NoError(t, err)
	return chart
}

func TestPaymentAccountName(t *testing.T) {
	cases := []struct {
		method string
		want   string
	}{
		{"cash", AcctCash},
		{"", AcctCash},
		{"upi", AcctBank},
		{"card", AcctBank},
		{"bank", AcctBank},
		{"credit", AcctAccountsReceivable},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PaymentAccountName(tc.method), tc.method)
	}
}

func TestEnsureChartIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	b := NewBootstrapper(repo)

	require.NoError(t, b.EnsureChart(context.Background(), "t1"))
	seeded := len(repo.accounts)
	assert.Greater(t, seeded, 0)

	require.NoError(t, b.EnsureChart(context.Background(), "t1"))
	assert.Len(t, repo.accounts, seeded)
}

func TestChartGetMissing(t *testing.T) {
	chart := Chart{}
	_, err := chart.Get(AcctCash)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeCOAMissing))
}

func TestRecordSaleCash(t *testing.T) {
	repo := seededRepo(t)
	r := NewRecorder(repo)
	chart := loadChart(t, r)
	at := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	invoiceID := id.New()
	err := r.RecordSale(context.Background(), chart, SaleEvent{
		TenantID:      "t1",
		InvoiceID:     invoiceID,
		InvoiceNo:     "INV-2026-0001",
		PaymentMethod: "cash",
		NetAmount:     types.MustMoney("200.00"),
		TaxAmount:     types.MustMoney("10.00"),
		Cost:          types.MustMoney("120.00"),
		At:            at,
	})
	require.NoError(t, err)

	require.Len(t, repo.journal, 3)
	cash := chart[AcctCash]
	sales := chart[AcctSales]
	vatOut := chart[AcctVATOutput]
	cogs := chart[AcctCOGS]
	inv := chart[AcctInventory]

	assert.Equal(t, cash.ID, repo.journal[0].DebitAccountID)
	assert.Equal(t, sales.ID, repo.journal[0].CreditAccountID)
	assert.True(t, types.MustMoney("200.00").Equal(repo.journal[0].Amount))

	assert.Equal(t, cash.ID, repo.journal[1].DebitAccountID)
	assert.Equal(t, vatOut.ID, repo.journal[1].CreditAccountID)

	assert.Equal(t, cogs.ID, repo.journal[2].DebitAccountID)
	assert.Equal(t, inv.ID, repo.journal[2].CreditAccountID)
	assert.True(t, types.MustMoney("120.00").Equal(repo.journal[2].Amount))

	// Two ledger sides per pair.
	assert.Len(t, repo.ledger, 6)

	// Cash came in: one credit-side daybook row for the gross.
	require.Len(t, repo.daybook, 1)
	assert.Equal(t, SideCredit, repo.daybook[0].Side)
	assert.Equal(t, AcctCash, repo.daybook[0].AccountName)
	assert.True(t, types.MustMoney("210.00").Equal(repo.daybook[0].Amount))
	assert.Equal(t, invoiceID, repo.daybook[0].ReferenceID)
}

func TestRecordSaleCreditSkipsDaybook(t *testing.T) {
	repo := seededRepo(t)
	r := NewRecorder(repo)
	chart := loadChart(t, r)

	err := r.RecordSale(context.Background(), chart, SaleEvent{
		TenantID:      "t1",
		InvoiceID:     id.New(),
		InvoiceNo:     "INV-2026-0002",
		PaymentMethod: "credit",
		NetAmount:     types.MustMoney("200.00"),
		TaxAmount:     types.MustMoney("10.00"),
		Cost:          types.MustMoney("120.00"),
		At:            time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, repo.journal, 3)
	ar := chart[AcctAccountsReceivable]
	assert.Equal(t, ar.ID, repo.journal[0].DebitAccountID)
	assert.Empty(t, repo.daybook)
}

func TestRecordSaleSkipsZeroPairs(t *testing.T) {
	repo := seededRepo(t)
	r := NewRecorder(repo)
	chart := loadChart(t, r)

	err := r.RecordSale(context.Background(), chart, SaleEvent{
		TenantID:      "t1",
		InvoiceID:     id.New(),
		InvoiceNo:     "INV-2026-0003",
		PaymentMethod: "cash",
		NetAmount:     types.MustMoney("100.00"),
		TaxAmount:     types.Zero(),
		Cost:          types.Zero(),
		At:            time.Now(),
	})
	require.NoError(t, err)

	assert.Len(t, repo.journal, 1)
	assert.Len(t, repo.ledger, 2)
}

func TestPostedReportsReference(t *testing.T) {
	repo := seededRepo(t)
	r := NewRecorder(repo)
	chart := loadChart(t, r)

	invoiceID := id.New()
	require.NoError(t, r.RecordSale(context.Background(), chart, SaleEvent{
		TenantID:      "t1",
		InvoiceID:     invoiceID,
		InvoiceNo:     "INV-2026-0009",
		PaymentMethod: "cash",
		NetAmount:     types.MustMoney("100.00"),
		At:            time.Now(),
	}))

	posted, err := r.Posted(context.Background(), "t1", RefInvoiceSale, invoiceID)
	require.NoError(t, err)
	assert.True(t, posted)

	posted, err = r.Posted(context.Background(), "t1", RefInvoiceSale, id.New())
	require.NoError(t, err)
	assert.False(t, posted)
}

func TestRecordSalesReturnCashDaybook(t *testing.T) {
	repo := seededRepo(t)
	r := NewRecorder(repo)
	chart := loadChart(t, r)

	err := r.RecordSalesReturn(context.Background(), chart, SalesReturnEvent{
		TenantID:   "t1",
		ReturnID:   id.New(),
		ReturnNo:   "SR-0001",
		RefundType: "cash",
		NetAmount:  types.MustMoney("100.00"),
		TaxAmount:  types.MustMoney("5.00"),
		Cost:       types.MustMoney("60.00"),
		At:         time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, repo.journal, 3)
	assert.Equal(t, chart[AcctSales].ID, repo.journal[0].DebitAccountID)
	assert.Equal(t, chart[AcctCash].ID, repo.journal[0].CreditAccountID)

	// A return is a negative sale, so its daybook row keeps the sale's
	// credit side.
	require.Len(t, repo.daybook, 1)
	assert.Equal(t, SideCredit, repo.daybook[0].Side)
	assert.Equal(t, AcctCash, repo.daybook[0].AccountName)
	assert.True(t, types.MustMoney("105.00").Equal(repo.daybook[0].Amount))
}

func TestRecordPurchaseCredit(t *testing.T) {
	repo := seededRepo(t)
	r := NewRecorder(repo)
	chart := loadChart(t, r)

	purchaseID := id.New()
	err := r.RecordPurchase(context.Background(), chart, PurchaseEvent{
		TenantID:      "t1",
		PurchaseID:    purchaseID,
		PurchaseNo:    "PUR-2026-0001",
		PaymentMethod: "credit",
		NetAmount:     types.MustMoney("500.00"),
		TaxAmount:     types.MustMoney("25.00"),
		At:            time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, repo.journal, 2)
	ap := chart[AcctAccountsPayable]
	inv := chart[AcctInventory]
	vatIn := chart[AcctVATInput]

	assert.Equal(t, inv.ID, repo.journal[0].DebitAccountID)
	assert.Equal(t, ap.ID, repo.journal[0].CreditAccountID)
	assert.Equal(t, vatIn.ID, repo.journal[1].DebitAccountID)
	assert.Equal(t, ap.ID, repo.journal[1].CreditAccountID)

	// Nothing was paid yet.
	assert.Empty(t, repo.daybook)
}

func TestRecordPurchaseCashWritesDaybook(t *testing.T) {
	repo := seededRepo(t)
	r := NewRecorder(repo)
	chart := loadChart(t, r)

	err := r.RecordPurchase(context.Background(), chart, PurchaseEvent{
		TenantID:      "t1",
		PurchaseID:    id.New(),
		PurchaseNo:    "PUR-2026-0002",
		PaymentMethod: "cash",
		NetAmount:     types.MustMoney("500.00"),
		TaxAmount:     types.MustMoney("25.00"),
		At:            time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, repo.daybook, 1)
	assert.Equal(t, SideDebit, repo.daybook[0].Side)
	assert.Equal(t, AcctCash, repo.daybook[0].AccountName)
	assert.True(t, types.MustMoney("525.00").Equal(repo.daybook[0].Amount))
}

func TestRecordSupplierPayment(t *testing.T) {
	repo := seededRepo(t)
	r := NewRecorder(repo)
	chart := loadChart(t, r)

	err := r.RecordSupplierPayment(context.Background(), chart, SupplierPaymentEvent{
		TenantID:  "t1",
		PaymentID: id.New(),
		Narration: "Payment to Acme",
		Method:    "bank",
		Amount:    types.MustMoney("300.00"),
		At:        time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, repo.journal, 1)
	assert.Equal(t, chart[AcctAccountsPayable].ID, repo.journal[0].DebitAccountID)
	assert.Equal(t, chart[AcctBank].ID, repo.journal[0].CreditAccountID)

	require.Len(t, repo.daybook, 1)
	assert.Equal(t, SideDebit, repo.daybook[0].Side)
	assert.Equal(t, AcctBank, repo.daybook[0].AccountName)
}
