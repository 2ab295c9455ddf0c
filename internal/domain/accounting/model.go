// Package accounting keeps double-entry books per tenant: journal pairs,
// running-balance ledger entries, and the human-readable daybook.
package accounting

import (
	"time"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
)

// Account types.
const (
	TypeAsset     = "asset"
	TypeLiability = "liability"
	TypeIncome    = "income"
	TypeExpense   = "expense"
	TypeEquity    = "equity"
)

// Default chart-of-accounts names. Every tenant is seeded with these;
// the recorder resolves them by name at posting time.
const (
	AcctCash               = "Cash"
	AcctBank               = "Bank"
	AcctInventory          = "Inventory"
	AcctAccountsReceivable = "Accounts Receivable"
	AcctVATInput           = "VAT Input"
	AcctEmployeeAdvance    = "Employee Advance"
	AcctAccountsPayable    = "Accounts Payable"
	AcctVATPayable         = "VAT Payable"
	AcctVATOutput          = "VAT Output"
	AcctSales              = "Sales"
	AcctCOGS               = "Cost of Goods Sold"
	AcctDiscountExpense    = "Discount Expense"
	AcctSalaryExpense      = "Salary Expense"
	AcctStaffDiscount      = "Staff Discount Expense"
)

// Reference types linking book rows back to their originating entity.
const (
	RefInvoiceSale     = "invoice_sale"
	RefInvoiceVAT      = "invoice_vat"
	RefInvoiceCOGS     = "invoice_cogs"
	RefSalesReturn     = "sales_return"
	RefCustomerPayment = "customer_payment"
	RefPurchase        = "purchase"
	RefPurchaseReturn  = "purchase_return"
	RefPurchasePayment = "purchase_payment"
	RefSalary          = "salary"
	RefGeneral         = "general"
)

// Daybook sides follow the event type, not the cash direction: sale-side
// events (sales and sales returns) post on the credit side, payment-side
// events (purchases, supplier payments) on the debit side.
const (
	SideDebit  = "debit"
	SideCredit = "credit"
)

// Account is one chart-of-accounts node.
type Account struct {
	ID        id.ID     `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"account_type"`
	ParentID  *id.ID    `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// JournalEntry is one double-entry pair.
type JournalEntry struct {
	ID              id.ID       `json:"id" db:"id"`
	TenantID        string      `json:"tenant_id" db:"tenant_id"`
	EntryDate       time.Time   `json:"entry_date" db:"entry_date"`
	DebitAccountID  id.ID       `json:"debit_account_id" db:"debit_account_id"`
	CreditAccountID id.ID       `json:"credit_account_id" db:"credit_account_id"`
	Amount          types.Money `json:"amount" db:"amount"`
	Narration       string      `json:"narration" db:"narration"`
	ReferenceType   string      `json:"reference_type" db:"reference_type"`
	ReferenceID     id.ID       `json:"reference_id" db:"reference_id"`
}

// LedgerEntry is one side of a journal pair with the account's running
// balance. Balance is filled by the store under per-account
// serialization; callers leave it zero.
type LedgerEntry struct {
	ID            id.ID       `json:"id" db:"id"`
	TenantID      string      `json:"tenant_id" db:"tenant_id"`
	AccountID     id.ID       `json:"account_id" db:"account_id"`
	EntryDate     time.Time   `json:"entry_date" db:"entry_date"`
	Debit         types.Money `json:"debit" db:"debit"`
	Credit        types.Money `json:"credit" db:"credit"`
	Balance       types.Money `json:"balance" db:"balance"`
	ReferenceType string      `json:"reference_type" db:"reference_type"`
	ReferenceID   id.ID       `json:"reference_id" db:"reference_id"`
}

// DaybookEntry is one human-readable cash-book row per business event.
type DaybookEntry struct {
	ID            id.ID       `json:"id" db:"id"`
	TenantID      string      `json:"tenant_id" db:"tenant_id"`
	EntryDate     time.Time   `json:"entry_date" db:"entry_date"`
	Side          string      `json:"side" db:"side"`
	AccountName   string      `json:"account_name" db:"account_name"`
	Amount        types.Money `json:"amount" db:"amount"`
	Description   string      `json:"description" db:"description"`
	ReferenceType string      `json:"reference_type" db:"reference_type"`
	ReferenceID   id.ID       `json:"reference_id" db:"reference_id"`
}

// NormalDebit reports whether the account type grows on the debit side.
// Assets and expenses do; liabilities, income and equity grow on credit.
func NormalDebit(accountType string) bool {
	return accountType == TypeAsset || accountType == TypeExpense
}
