package accounting

import (
	"context"
	"fmt"
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Recorder posts business events into the books. The chart is loaded
// once per call and passed in so a posting sequence resolves names
// consistently.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// LoadChart reads the tenant's chart of accounts into a name map.
func (r *Recorder) LoadChart(ctx context.Context, tenantID string) (Chart, error) {
	accounts, err := r.repo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load chart of accounts: %w", err)
	}
	chart := make(Chart, len(accounts))
	for _, a := range accounts {
		chart[a.Name] = a
	}
	return chart, nil
}

// Posted reports whether a journal pair with the given reference has
// already been written, so replayed events can be skipped.
func (r *Recorder) Posted(ctx context.Context, tenantID, refType string, refID id.ID) (bool, error) {
	ok, err := r.repo.JournalExists(ctx, tenantID, refType, refID)
	if err != nil {
		return false, fmt.Errorf("check journal reference: %w", err)
	}
	return ok, nil
}

// PaymentAccountName maps a payment method to the account that receives
// the money: upi/card/bank settle to Bank, credit to Accounts
// Receivable, everything else to Cash.
func PaymentAccountName(method string) string {
	switch method {
	case "upi", "card", "bank":
		return AcctBank
	case "credit":
		return AcctAccountsReceivable
	default:
		return AcctCash
	}
}

// pair is one journal pair to be posted.
type pair struct {
	debit     Account
	credit    Account
	amount    types.Money
	narration string
	refType   string
	refID     id.ID
}

// post writes journal pairs and their ledger sides. Zero and negative
// amounts are skipped so callers can pass pairs unconditionally.
func (r *Recorder) post(ctx context.Context, tenantID string, at time.Time, pairs []pair) error {
	journal := make([]JournalEntry, 0, len(pairs))
	ledger := make([]LedgerEntry, 0, 2*len(pairs))

	for _, p := range pairs {
		if !p.amount.IsPositive() {
			continue
		}
		journal = append(journal, JournalEntry{
			ID:              id.New(),
			TenantID:        tenantID,
			EntryDate:       at,
			DebitAccountID:  p.debit.ID,
			CreditAccountID: p.credit.ID,
			Amount:          p.amount,
			Narration:       p.narration,
			ReferenceType:   p.refType,
			ReferenceID:     p.refID,
		})
		ledger = append(ledger,
			LedgerEntry{
				ID: id.New(), TenantID: tenantID, AccountID: p.debit.ID,
				EntryDate: at, Debit: p.amount, Credit: types.Zero(),
				ReferenceType: p.refType, ReferenceID: p.refID,
			},
			LedgerEntry{
				ID: id.New(), TenantID: tenantID, AccountID: p.credit.ID,
				EntryDate: at, Debit: types.Zero(), Credit: p.amount,
				ReferenceType: p.refType, ReferenceID: p.refID,
			},
		)
	}
	if len(journal) == 0 {
		return nil
	}

	if err := r.repo.AppendJournal(ctx, journal); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	if err := r.repo.AppendLedger(ctx, ledger); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	return nil
}

// SaleEvent carries the amounts of one finished sale invoice.
type SaleEvent struct {
	TenantID      string
	InvoiceID     id.ID
	InvoiceNo     string
	PaymentMethod string
	NetAmount     types.Money
	TaxAmount     types.Money
	Cost          types.Money
	At            time.Time
}

// RecordSale posts a sale: Dr payment-account / Cr Sales for the net,
// Dr payment-account / Cr VAT Output for the tax, and Dr COGS /
// Cr Inventory at cost. Credit sales debit Accounts Receivable and
// skip the daybook.
func (r *Recorder) RecordSale(ctx context.Context, chart Chart, ev SaleEvent) error {
	payAcct, err := chart.Get(PaymentAccountName(ev.PaymentMethod))
	if err != nil {
		return err
	}
	sales, err := chart.Get(AcctSales)
	if err != nil {
		return err
	}
	vatOut, err := chart.Get(AcctVATOutput)
	if err != nil {
		return err
	}
	cogs, err := chart.Get(AcctCOGS)
	if err != nil {
		return err
	}
	inv, err := chart.Get(AcctInventory)
	if err != nil {
		return err
	}

	narr := fmt.Sprintf("Sale %s", ev.InvoiceNo)
	err = r.post(ctx, ev.TenantID, ev.At, []pair{
		{debit: payAcct, credit: sales, amount: ev.NetAmount, narration: narr, refType: RefInvoiceSale, refID: ev.InvoiceID},
		{debit: payAcct, credit: vatOut, amount: ev.TaxAmount, narration: narr, refType: RefInvoiceVAT, refID: ev.InvoiceID},
		{debit: cogs, credit: inv, amount: ev.Cost, narration: narr, refType: RefInvoiceCOGS, refID: ev.InvoiceID},
	})
	if err != nil {
		return err
	}

	if ev.PaymentMethod == "credit" {
		return nil
	}
	gross := ev.NetAmount.Add(ev.TaxAmount)
	if !gross.IsPositive() {
		return nil
	}
	return r.repo.AppendDaybook(ctx, []DaybookEntry{{
		ID:            id.New(),
		TenantID:      ev.TenantID,
		EntryDate:     ev.At,
		Side:          SideCredit,
		AccountName:   payAcct.Name,
		Amount:        gross,
		Description:   narr,
		ReferenceType: RefInvoiceSale,
		ReferenceID:   ev.InvoiceID,
	}})
}

// SalesReturnEvent carries the amounts of one sales return.
type SalesReturnEvent struct {
	TenantID   string
	ReturnID   id.ID
	ReturnNo   string
	RefundType string // "cash" or "credit_note"
	NetAmount  types.Money
	TaxAmount  types.Money
	Cost       types.Money
	At         time.Time
}

// RecordSalesReturn mirrors RecordSale: Dr Sales and Dr VAT Output, Cr
// the refund account (Cash for cash refunds, Accounts Receivable for
// credit notes), and Dr Inventory / Cr COGS for the restocked cost.
// The cash-refund daybook row stays on the credit side, as a negative
// sale rather than a payment.
func (r *Recorder) RecordSalesReturn(ctx context.Context, chart Chart, ev SalesReturnEvent) error {
	refundName := AcctAccountsReceivable
	if ev.RefundType == "cash" {
		refundName = AcctCash
	}
	refund, err := chart.Get(refundName)
	if err != nil {
		return err
	}
	sales, err := chart.Get(AcctSales)
	if err != nil {
		return err
	}
	vatOut, err := chart.Get(AcctVATOutput)
	if err != nil {
		return err
	}
	cogs, err := chart.Get(AcctCOGS)
	if err != nil {
		return err
	}
	inv, err := chart.Get(AcctInventory)
	if err != nil {
		return err
	}

	narr := fmt.Sprintf("Sales return %s", ev.ReturnNo)
	err = r.post(ctx, ev.TenantID, ev.At, []pair{
		{debit: sales, credit: refund, amount: ev.NetAmount, narration: narr, refType: RefSalesReturn, refID: ev.ReturnID},
		{debit: vatOut, credit: refund, amount: ev.TaxAmount, narration: narr, refType: RefSalesReturn, refID: ev.ReturnID},
		{debit: inv, credit: cogs, amount: ev.Cost, narration: narr, refType: RefSalesReturn, refID: ev.ReturnID},
	})
	if err != nil {
		return err
	}

	if ev.RefundType != "cash" {
		return nil
	}
	gross := ev.NetAmount.Add(ev.TaxAmount)
	if !gross.IsPositive() {
		return nil
	}
	return r.repo.AppendDaybook(ctx, []DaybookEntry{{
		ID:            id.New(),
		TenantID:      ev.TenantID,
		EntryDate:     ev.At,
		Side:          SideCredit,
		AccountName:   refund.Name,
		Amount:        gross,
		Description:   narr,
		ReferenceType: RefSalesReturn,
		ReferenceID:   ev.ReturnID,
	}})
}

// PurchaseEvent carries the amounts of one supplier purchase.
type PurchaseEvent struct {
	TenantID      string
	PurchaseID    id.ID
	PurchaseNo    string
	PaymentMethod string // "credit" books against Accounts Payable
	NetAmount     types.Money
	TaxAmount     types.Money
	At            time.Time
}

func purchaseSettleName(method string) string {
	switch method {
	case "credit":
		return AcctAccountsPayable
	case "upi", "card", "bank":
		return AcctBank
	default:
		return AcctCash
	}
}

// RecordPurchase posts Dr Inventory for the net and Dr VAT Input for
// the tax, against Cash/Bank or Accounts Payable.
func (r *Recorder) RecordPurchase(ctx context.Context, chart Chart, ev PurchaseEvent) error {
	settle, err := chart.Get(purchaseSettleName(ev.PaymentMethod))
	if err != nil {
		return err
	}
	inv, err := chart.Get(AcctInventory)
	if err != nil {
		return err
	}
	vatIn, err := chart.Get(AcctVATInput)
	if err != nil {
		return err
	}

	narr := fmt.Sprintf("Purchase %s", ev.PurchaseNo)
	err = r.post(ctx, ev.TenantID, ev.At, []pair{
		{debit: inv, credit: settle, amount: ev.NetAmount, narration: narr, refType: RefPurchase, refID: ev.PurchaseID},
		{debit: vatIn, credit: settle, amount: ev.TaxAmount, narration: narr, refType: RefPurchase, refID: ev.PurchaseID},
	})
	if err != nil {
		return err
	}

	if ev.PaymentMethod == "credit" {
		return nil
	}
	gross := ev.NetAmount.Add(ev.TaxAmount)
	if !gross.IsPositive() {
		return nil
	}
	return r.repo.AppendDaybook(ctx, []DaybookEntry{{
		ID:            id.New(),
		TenantID:      ev.TenantID,
		EntryDate:     ev.At,
		Side:          SideDebit,
		AccountName:   settle.Name,
		Amount:        gross,
		Description:   narr,
		ReferenceType: RefPurchase,
		ReferenceID:   ev.PurchaseID,
	}})
}

// PurchaseReturnEvent carries the amounts of one return to a supplier.
type PurchaseReturnEvent struct {
	TenantID      string
	ReturnID      id.ID
	ReturnNo      string
	PaymentMethod string
	NetAmount     types.Money
	TaxAmount     types.Money
	At            time.Time
}

// RecordPurchaseReturn reverses a purchase: Dr the settlement account,
// Cr Inventory for the net and Cr VAT Input for the tax.
func (r *Recorder) RecordPurchaseReturn(ctx context.Context, chart Chart, ev PurchaseReturnEvent) error {
	settle, err := chart.Get(purchaseSettleName(ev.PaymentMethod))
	if err != nil {
		return err
	}
	inv, err := chart.Get(AcctInventory)
	if err != nil {
		return err
	}
	vatIn, err := chart.Get(AcctVATInput)
	if err != nil {
		return err
	}

	narr := fmt.Sprintf("Purchase return %s", ev.ReturnNo)
	return r.post(ctx, ev.TenantID, ev.At, []pair{
		{debit: settle, credit: inv, amount: ev.NetAmount, narration: narr, refType: RefPurchaseReturn, refID: ev.ReturnID},
		{debit: settle, credit: vatIn, amount: ev.TaxAmount, narration: narr, refType: RefPurchaseReturn, refID: ev.ReturnID},
	})
}

// SupplierPaymentEvent settles outstanding payables.
type SupplierPaymentEvent struct {
	TenantID  string
	PaymentID id.ID
	Narration string
	Method    string // "bank"/"upi"/"card" settle from Bank, else Cash
	Amount    types.Money
	At        time.Time
}

// RecordSupplierPayment posts Dr Accounts Payable, Cr Cash/Bank, and a
// debit-side daybook row.
func (r *Recorder) RecordSupplierPayment(ctx context.Context, chart Chart, ev SupplierPaymentEvent) error {
	ap, err := chart.Get(AcctAccountsPayable)
	if err != nil {
		return err
	}
	fromName := AcctCash
	switch ev.Method {
	case "bank", "upi", "card":
		fromName = AcctBank
	}
	from, err := chart.Get(fromName)
	if err != nil {
		return err
	}

	err = r.post(ctx, ev.TenantID, ev.At, []pair{
		{debit: ap, credit: from, amount: ev.Amount, narration: ev.Narration, refType: RefPurchasePayment, refID: ev.PaymentID},
	})
	if err != nil {
		return err
	}
	if !ev.Amount.IsPositive() {
		return nil
	}
	return r.repo.AppendDaybook(ctx, []DaybookEntry{{
		ID:            id.New(),
		TenantID:      ev.TenantID,
		EntryDate:     ev.At,
		Side:          SideDebit,
		AccountName:   from.Name,
		Amount:        ev.Amount,
		Description:   ev.Narration,
		ReferenceType: RefPurchasePayment,
		ReferenceID:   ev.PaymentID,
	}})
}
