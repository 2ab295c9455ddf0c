package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/accounting"
	"vendura/internal/domain/catalogs/customer"
	"vendura/internal/domain/loyalty"
	"vendura/internal/domain/vat"
)

type fakeRenderer struct {
	rendered []id.ID
	err      error
}

func (f *fakeRenderer) Render(ctx context.Context, inv *Invoice, items []InvoiceItem) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rendered = append(f.rendered, inv.ID)
	return "/receipts/" + inv.InvoiceNumber + ".pdf", nil
}

type tailFixture struct {
	repo      *fakeSalesRepo
	customers *fakeCustomers
	loyRepo   *fakeLoyalty
	books     *fakeAccounting
	vatRepo   *fakeVAT
	renderer  *fakeRenderer

	tail *Tail
}

func newTailFixture() *tailFixture {
	f := &tailFixture{
		repo:      newFakeSalesRepo(),
		customers: &fakeCustomers{customers: make(map[id.ID]*customer.Customer)},
		loyRepo:   newFakeLoyalty(),
		books:     newFakeAccounting(),
		vatRepo:   &fakeVAT{},
		renderer:  &fakeRenderer{},
	}
	f.tail = NewTail(
		fakeTxManager{},
		f.repo,
		f.customers,
		loyalty.NewEngine(f.loyRepo, f.customers),
		accounting.NewRecorder(f.books),
		vat.NewAggregator(f.vatRepo),
		f.renderer,
		4,
	)
	return f
}

// seedCommitted records an already committed cash invoice for the tail
// to pick up.
func (f *tailFixture) seedCommitted(customerID *id.ID) *Invoice {
	inv := &Invoice{
		ID:            id.New(),
		TenantID:      testTenant,
		InvoiceNumber: "INV-2026-0007",
		CustomerID:    customerID,
		PaymentMethod: PayCash,
		FinalAmount:   types.MustMoney("210.00"),
		CreatedAt:     time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}
	f.repo.invoices[inv.ID] = inv
	f.repo.items[inv.ID] = []InvoiceItem{{
		ID:        id.New(),
		TenantID:  testTenant,
		InvoiceID: inv.ID,
		ProductID: id.New(),
		Quantity:  2,
		TaxAmount: types.MustMoney("10.00"),
		CostPrice: types.MustMoney("60.00"),
	}}
	return inv
}

func TestProcessPostsBooksAndPDF(t *testing.T) {
	f := newTailFixture()
	inv := f.seedCommitted(nil)

	require.NoError(t, f.tail.Process(context.Background(), testTenant, inv.ID))

	// Net 200, tax 10, cost 120: three pairs and a cash daybook row.
	require.Len(t, f.books.journal, 3)
	assert.True(t, types.MustMoney("200.00").Equal(f.books.journal[0].Amount))
	assert.True(t, types.MustMoney("120.00").Equal(f.books.journal[2].Amount))
	require.Len(t, f.books.daybook, 1)
	assert.True(t, types.MustMoney("210.00").Equal(f.books.daybook[0].Amount))

	require.Len(t, f.vatRepo.deltas, 1)
	assert.True(t, types.MustMoney("200.00").Equal(f.vatRepo.deltas[0].TotalSales))
	assert.True(t, types.MustMoney("10.00").Equal(f.vatRepo.deltas[0].SalesVAT))

	assert.Equal(t, []id.ID{inv.ID}, f.renderer.rendered)
	assert.Equal(t, "/receipts/INV-2026-0007.pdf", f.repo.pdfURLs[inv.ID])
}

func TestProcessEarnsPointsForCustomer(t *testing.T) {
	f := newTailFixture()
	cust := &customer.Customer{ID: id.New(), TenantID: testTenant, LoyaltyPoints: 10}
	f.customers.customers[cust.ID] = cust
	inv := f.seedCommitted(&cust.ID)

	require.NoError(t, f.tail.Process(context.Background(), testTenant, inv.ID))

	// floor(210/100) = 2 on the default rule, credited to both balances.
	assert.Equal(t, int64(12), cust.LoyaltyPoints)
	assert.Equal(t, int64(2), cust.LifetimePoints)
	require.Len(t, f.loyRepo.txns, 1)
	assert.Equal(t, loyalty.TxnEarn, f.loyRepo.txns[0].Type)
	require.NotNil(t, f.loyRepo.txns[0].InvoiceID)
	assert.Equal(t, inv.ID, *f.loyRepo.txns[0].InvoiceID)
}

func TestProcessPostsBooksAtRunTime(t *testing.T) {
	f := newTailFixture()
	inv := f.seedCommitted(nil)

	before := time.Now().UTC()
	require.NoError(t, f.tail.Process(context.Background(), testTenant, inv.ID))

	// The books carry the posting time: a row dated back to the invoice
	// would land mid-chain and break the running balances behind it.
	require.Len(t, f.books.journal, 3)
	for _, e := range f.books.journal {
		assert.False(t, e.EntryDate.Before(before))
	}
	require.Len(t, f.books.ledger, 6)
	for _, e := range f.books.ledger {
		assert.False(t, e.EntryDate.Before(before))
	}

	// The VAT period still follows the invoice month.
	require.Len(t, f.vatRepo.periods, 1)
	assert.Equal(t, "2026-08", f.vatRepo.periods[0])
}

func TestProcessReplayIsIdempotent(t *testing.T) {
	f := newTailFixture()
	cust := &customer.Customer{ID: id.New(), TenantID: testTenant, LoyaltyPoints: 10}
	f.customers.customers[cust.ID] = cust
	inv := f.seedCommitted(&cust.ID)

	require.NoError(t, f.tail.Process(context.Background(), testTenant, inv.ID))
	require.NoError(t, f.tail.Process(context.Background(), testTenant, inv.ID))

	// The second run sees the posted sale pair and touches nothing.
	assert.Len(t, f.books.journal, 3)
	assert.Len(t, f.books.daybook, 1)
	assert.Len(t, f.vatRepo.deltas, 1)
	assert.Len(t, f.loyRepo.txns, 1)
	assert.Equal(t, int64(12), cust.LoyaltyPoints)
	assert.Len(t, f.renderer.rendered, 1)
}

func TestProcessReplayRecoversMissingPDF(t *testing.T) {
	f := newTailFixture()
	f.renderer.err = context.DeadlineExceeded
	inv := f.seedCommitted(nil)

	require.NoError(t, f.tail.Process(context.Background(), testTenant, inv.ID))
	require.Empty(t, f.repo.pdfURLs)

	f.renderer.err = nil
	require.NoError(t, f.tail.Process(context.Background(), testTenant, inv.ID))

	assert.Len(t, f.books.journal, 3)
	assert.Equal(t, "/receipts/INV-2026-0007.pdf", f.repo.pdfURLs[inv.ID])
}

func TestProcessRenderFailureKeepsBooks(t *testing.T) {
	f := newTailFixture()
	f.renderer.err = context.DeadlineExceeded
	inv := f.seedCommitted(nil)

	require.NoError(t, f.tail.Process(context.Background(), testTenant, inv.ID))

	assert.Len(t, f.books.journal, 3)
	assert.Empty(t, f.repo.pdfURLs)
}

func TestProcessUnknownInvoice(t *testing.T) {
	f := newTailFixture()
	assert.Error(t, f.tail.Process(context.Background(), testTenant, id.New()))
}

func TestScheduleDropsWhenFull(t *testing.T) {
	f := newTailFixture()

	for i := 0; i < 10; i++ {
		f.tail.Schedule(Task{TenantID: testTenant, InvoiceID: id.New()})
	}
	// The queue holds four; the rest were dropped without blocking.
	assert.Len(t, f.tail.tasks, 4)
}

func TestRunDrainsQueueOnCancel(t *testing.T) {
	f := newTailFixture()
	inv := f.seedCommitted(nil)
	f.tail.Schedule(Task{TenantID: testTenant, InvoiceID: inv.ID})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		f.tail.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Len(t, f.books.journal, 3)
}
