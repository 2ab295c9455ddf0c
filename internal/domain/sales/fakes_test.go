package sales

import (
	"context"
	"fmt"
	"time"

	"vendura/internal/core/apperror"
	appctx "vendura/internal/core/context"
	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/accounting"
	"vendura/internal/domain/catalogs/customer"
	"vendura/internal/domain/catalogs/employee"
	"vendura/internal/domain/catalogs/product"
	"vendura/internal/domain/discount"
	"vendura/internal/domain/inventory"
	"vendura/internal/domain/loyalty"
	"vendura/internal/domain/vat"
)

const testTenant = "t1"

func testCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:   "u1",
		TenantID: testTenant,
		Role:     "cashier",
		FullName: "Test Clerk",
	})
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSalesRepo struct {
	invoices    map[id.ID]*Invoice
	items       map[id.ID][]InvoiceItem
	discounts   []InvoiceDiscount
	returns     map[id.ID]*Return
	returnItems map[id.ID][]ReturnItem
	returnedQty map[id.ID]int64
	pdfURLs     map[id.ID]string
}

func newFakeSalesRepo() *fakeSalesRepo {
	return &fakeSalesRepo{
		invoices:    make(map[id.ID]*Invoice),
		items:       make(map[id.ID][]InvoiceItem),
		returns:     make(map[id.ID]*Return),
		returnItems: make(map[id.ID][]ReturnItem),
		returnedQty: make(map[id.ID]int64),
		pdfURLs:     make(map[id.ID]string),
	}
}

func (f *fakeSalesRepo) CreateInvoice(ctx context.Context, inv *Invoice) error {
	f.invoices[inv.ID] = inv
	return nil
}

func (f *fakeSalesRepo) InsertItems(ctx context.Context, items []InvoiceItem) error {
	for _, it := range items {
		f.items[it.InvoiceID] = append(f.items[it.InvoiceID], it)
	}
	return nil
}

func (f *fakeSalesRepo) InsertDiscounts(ctx context.Context, discounts []InvoiceDiscount) error {
	f.discounts = append(f.discounts, discounts...)
	return nil
}

func (f *fakeSalesRepo) GetInvoice(ctx context.Context, tenantID string, invoiceID id.ID) (*Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound(apperror.CodeInvoiceNotFound, "invoice", invoiceID)
	}
	return inv, nil
}

func (f *fakeSalesRepo) GetItems(ctx context.Context, tenantID string, invoiceID id.ID) ([]InvoiceItem, error) {
	return f.items[invoiceID], nil
}

func (f *fakeSalesRepo) SetPDFURL(ctx context.Context, tenantID string, invoiceID id.ID, url string) error {
	f.pdfURLs[invoiceID] = url
	if inv, ok := f.invoices[invoiceID]; ok {
		u := url
		inv.PDFURL = &u
	}
	return nil
}

func (f *fakeSalesRepo) CreateReturn(ctx context.Context, ret *Return) error {
	f.returns[ret.ID] = ret
	return nil
}

func (f *fakeSalesRepo) InsertReturnItems(ctx context.Context, items []ReturnItem) error {
	for _, it := range items {
		f.returnItems[it.ReturnID] = append(f.returnItems[it.ReturnID], it)
	}
	return nil
}

func (f *fakeSalesRepo) UpdateReturnTotal(ctx context.Context, tenantID string, returnID id.ID, total types.Money) error {
	if ret, ok := f.returns[returnID]; ok {
		ret.TotalRefund = total
	}
	return nil
}

func (f *fakeSalesRepo) ReturnedQuantities(ctx context.Context, tenantID string, invoiceID id.ID) (map[id.ID]int64, error) {
	return f.returnedQty, nil
}

type fakeNumbering struct {
	next int64
}

func (f *fakeNumbering) NextInvoiceNumber(ctx context.Context, tenantID string, year int) (string, error) {
	f.next++
	return fmt.Sprintf("INV-%d-%04d", year, f.next), nil
}

type fakeProducts struct {
	products map[id.ID]product.Product
}

func (f *fakeProducts) GetByIDs(ctx context.Context, tenantID string, ids []id.ID) (map[id.ID]product.Product, error) {
	out := make(map[id.ID]product.Product, len(ids))
	for _, pid := range ids {
		if p, ok := f.products[pid]; ok {
			out[pid] = p
		}
	}
	return out, nil
}

type fakeCustomers struct {
	customers map[id.ID]*customer.Customer
}

func (f *fakeCustomers) GetByID(ctx context.Context, tenantID string, customerID id.ID) (*customer.Customer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound(apperror.CodeCustomerNotFound, "customer", customerID)
	}
	return c, nil
}

func (f *fakeCustomers) AdjustPoints(ctx context.Context, tenantID string, customerID id.ID, pointsDelta, lifetimeDelta int64) (int64, error) {
	c := f.customers[customerID]
	if c.LoyaltyPoints+pointsDelta < 0 {
		return 0, apperror.NewConflict(apperror.CodeInsufficientPoints, "insufficient points")
	}
	c.LoyaltyPoints += pointsDelta
	c.LifetimePoints += lifetimeDelta
	return c.LoyaltyPoints, nil
}

func (f *fakeCustomers) RecordPurchase(ctx context.Context, tenantID string, customerID id.ID, amount types.Money) error {
	return nil
}

type fakeEmployees struct{}

func (fakeEmployees) Exists(ctx context.Context, tenantID string, employeeID id.ID) (bool, error) {
	return false, nil
}

type fakeDiscounts struct {
	rules []discount.Rule
}

func (f *fakeDiscounts) ListActiveRules(ctx context.Context, tenantID string) ([]discount.Rule, error) {
	return f.rules, nil
}

func (f *fakeDiscounts) GetActiveStaffRule(ctx context.Context, tenantID string) (*discount.StaffRule, error) {
	return nil, nil
}

func (f *fakeDiscounts) CouponUsageCount(ctx context.Context, tenantID string, couponID id.ID) (int64, error) {
	return 0, nil
}

func (f *fakeDiscounts) CouponUsageCountByCustomer(ctx context.Context, tenantID string, couponID, customerID id.ID) (int64, error) {
	return 0, nil
}

func (f *fakeDiscounts) RecordCouponUsage(ctx context.Context, tenantID string, couponID id.ID, customerID *id.ID, invoiceID id.ID, maxUses, perCustomerLimit *int64) error {
	return nil
}

func (f *fakeDiscounts) StaffUsageMonthTotal(ctx context.Context, tenantID string, employeeID id.ID, at time.Time) (types.Money, error) {
	return types.Zero(), nil
}

func (f *fakeDiscounts) CreateStaffUsage(ctx context.Context, usage *discount.StaffUsage) error {
	return nil
}

func (f *fakeDiscounts) AttachStaffUsageInvoice(ctx context.Context, tenantID string, usageID, invoiceID id.ID) error {
	return nil
}

type fakeLoyalty struct {
	rule     *loyalty.Rule
	txns     []*loyalty.Transaction
	attached map[id.ID]id.ID
}

func newFakeLoyalty() *fakeLoyalty {
	return &fakeLoyalty{attached: make(map[id.ID]id.ID)}
}

func (f *fakeLoyalty) GetActiveRule(ctx context.Context, tenantID string) (*loyalty.Rule, error) {
	return f.rule, nil
}

func (f *fakeLoyalty) AppendTransaction(ctx context.Context, txn *loyalty.Transaction) error {
	f.txns = append(f.txns, txn)
	return nil
}

func (f *fakeLoyalty) AttachInvoice(ctx context.Context, tenantID string, txnIDs []id.ID, invoiceID id.ID) error {
	for _, tid := range txnIDs {
		f.attached[tid] = invoiceID
	}
	return nil
}

func (f *fakeLoyalty) ListTransactions(ctx context.Context, tenantID string, customerID id.ID, limit uint64) ([]loyalty.Transaction, error) {
	return nil, nil
}

type stockRow struct {
	qty     int64
	reorder int64
}

type fakeInventory struct {
	rows      map[id.ID]*stockRow
	movements []inventory.Movement
}

func (f *fakeInventory) Get(ctx context.Context, tenantID string, productID id.ID) (*inventory.Row, error) {
	r, ok := f.rows[productID]
	if !ok {
		return nil, nil
	}
	return &inventory.Row{TenantID: tenantID, ProductID: productID, Quantity: r.qty, ReorderLevel: r.reorder}, nil
}

func (f *fakeInventory) Decrement(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, int64, error) {
	r, ok := f.rows[productID]
	if !ok {
		return 0, 0, apperror.NewNoInventoryRow(productID)
	}
	if r.qty < qty {
		return 0, 0, apperror.NewInsufficientStock(productID, qty, r.qty)
	}
	r.qty -= qty
	return r.qty, r.reorder, nil
}

func (f *fakeInventory) Increase(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, error) {
	r, ok := f.rows[productID]
	if !ok {
		return 0, apperror.NewNoInventoryRow(productID)
	}
	r.qty += qty
	return r.qty, nil
}

func (f *fakeInventory) IncreaseOrCreate(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, error) {
	r, ok := f.rows[productID]
	if !ok {
		f.rows[productID] = &stockRow{qty: qty}
		return qty, nil
	}
	r.qty += qty
	return r.qty, nil
}

func (f *fakeInventory) AppendMovements(ctx context.Context, movements []inventory.Movement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeInventory) ListMovements(ctx context.Context, tenantID string, productID *id.ID, limit uint64) ([]inventory.Movement, error) {
	return f.movements, nil
}

type fakeAccounting struct {
	accounts []accounting.Account
	journal  []accounting.JournalEntry
	ledger   []accounting.LedgerEntry
	daybook  []accounting.DaybookEntry
}

func newFakeAccounting() *fakeAccounting {
	names := []struct {
		name string
		typ  string
	}{
		{accounting.AcctCash, accounting.TypeAsset},
		{accounting.AcctBank, accounting.TypeAsset},
		{accounting.AcctInventory, accounting.TypeAsset},
		{accounting.AcctAccountsReceivable, accounting.TypeAsset},
		{accounting.AcctVATInput, accounting.TypeAsset},
		{accounting.AcctAccountsPayable, accounting.TypeLiability},
		{accounting.AcctVATOutput, accounting.TypeLiability},
		{accounting.AcctSales, accounting.TypeIncome},
		{accounting.AcctCOGS, accounting.TypeExpense},
	}
	f := &fakeAccounting{}
	for _, n := range names {
		f.accounts = append(f.accounts, accounting.Account{
			ID:       id.New(),
			TenantID: testTenant,
			Name:     n.name,
			Type:     n.typ,
		})
	}
	return f
}

func (f *fakeAccounting) ListAccounts(ctx context.Context, tenantID string) ([]accounting.Account, error) {
	return f.accounts, nil
}

func (f *fakeAccounting) CreateAccounts(ctx context.Context, accounts []accounting.Account) error {
	f.accounts = append(f.accounts, accounts...)
	return nil
}

func (f *fakeAccounting) AppendJournal(ctx context.Context, entries []accounting.JournalEntry) error {
	f.journal = append(f.journal, entries...)
	return nil
}

func (f *fakeAccounting) AppendLedger(ctx context.Context, entries []accounting.LedgerEntry) error {
	f.ledger = append(f.ledger, entries...)
	return nil
}

func (f *fakeAccounting) AppendDaybook(ctx context.Context, entries []accounting.DaybookEntry) error {
	f.daybook = append(f.daybook, entries...)
	return nil
}

func (f *fakeAccounting) JournalExists(ctx context.Context, tenantID, referenceType string, referenceID id.ID) (bool, error) {
	for _, e := range f.journal {
		if e.TenantID == tenantID && e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

type fakeVAT struct {
	deltas  []vat.Delta
	periods []string
}

func (f *fakeVAT) ApplyDelta(ctx context.Context, tenantID, period string, d vat.Delta) error {
	f.deltas = append(f.deltas, d)
	f.periods = append(f.periods, period)
	return nil
}

func (f *fakeVAT) Get(ctx context.Context, tenantID, period string) (*vat.Report, error) {
	return nil, nil
}

type fakeScheduler struct {
	tasks []Task
}

func (f *fakeScheduler) Schedule(task Task) {
	f.tasks = append(f.tasks, task)
}

var (
	_ Repository            = (*fakeSalesRepo)(nil)
	_ product.Repository    = (*fakeProducts)(nil)
	_ customer.Repository   = (*fakeCustomers)(nil)
	_ employee.Directory    = (*fakeEmployees)(nil)
	_ discount.Repository   = (*fakeDiscounts)(nil)
	_ loyalty.Repository    = (*fakeLoyalty)(nil)
	_ inventory.Repository  = (*fakeInventory)(nil)
	_ accounting.Repository = (*fakeAccounting)(nil)
	_ vat.Repository        = (*fakeVAT)(nil)
)
