package accounting

import (
	"vendura/internal/core/apperror"
)

// Chart is a per-tenant name-to-account map, loaded once per posting
// call.
type Chart map[string]Account

// Get resolves a named account; a missing name is a tenant
// configuration fault.
func (c Chart) Get(name string) (Account, error) {
	acct, ok := c[name]
	if !ok {
		return Account{}, apperror.NewCOAMissing(name)
	}
	return acct, nil
}

// defaultAccounts is the set seeded for every new tenant.
var defaultAccounts = []struct {
	Name string
	Type string
}{
	{AcctCash, TypeAsset},
	{AcctBank, TypeAsset},
	{AcctInventory, TypeAsset},
	{AcctAccountsReceivable, TypeAsset},
	{AcctVATInput, TypeAsset},
	{AcctEmployeeAdvance, TypeAsset},
	{AcctAccountsPayable, TypeLiability},
	{AcctVATPayable, TypeLiability},
	{AcctVATOutput, TypeLiability},
	{AcctSales, TypeIncome},
	{AcctCOGS, TypeExpense},
	{AcctDiscountExpense, TypeExpense},
	{AcctSalaryExpense, TypeExpense},
	{AcctStaffDiscount, TypeExpense},
}
