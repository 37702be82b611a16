package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType int

const (
	AccountTypeAsset AccountType = iota
	AccountTypeLiability
	AccountTypeEquity
	AccountTypeRevenue
	AccountTypeExpense
	AccountTypePriorProfit
	AccountTypeCurrentProfit
)

var accountTypeNames = [...]string{
	AccountTypeAsset:         "asset",
	AccountTypeLiability:     "liability",
	AccountTypeEquity:        "equity",
	AccountTypeRevenue:       "revenue",
	AccountTypeExpense:       "expense",
	AccountTypePriorProfit:   "prior-profit",
	AccountTypeCurrentProfit: "current-profit",
}

// Valid reports whether t is one of the seven account kinds.
func (t AccountType) Valid() bool {
	return t >= AccountTypeAsset && t <= AccountTypeCurrentProfit
}

func (t AccountType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("AccountType(%d)", int(t))
	}
	return accountTypeNames[t]
}

// ParseAccountType is the inverse of AccountType.String.
func ParseAccountType(s string) (AccountType, error) {
	for i, name := range accountTypeNames {
		if name == s {
			return AccountType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown account type %q", s)
}

// Account is a row in the chart of accounts.
type Account struct {
	ID            int
	Number        string // sort key, unique within a ledger
	Name          string
	Type          AccountType
	VatCode       int
	VatRate       decimal.Decimal // percent
	VatAccount1ID int             // 0 = none
	VatAccount2ID int
	Flags         int
}

// IsBalanceSheetAccount reports whether the account belongs to the balance
// sheet rather than the income statement.
func (a Account) IsBalanceSheetAccount() bool {
	switch a.Type {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypePriorProfit, AccountTypeCurrentProfit:
		return true
	}
	return false
}

// HasVat reports whether VAT is active on the account.
func (a Account) HasVat() bool {
	return a.VatCode > 0 && a.VatRate.IsPositive()
}

// HasFlag reports whether bit is set.
func (a Account) HasFlag(bit uint) bool {
	return a.Flags&(1<<bit) != 0
}

// SetFlag sets or clears bit.
func (a *Account) SetFlag(bit uint, on bool) {
	if on {
		a.Flags |= 1 << bit
	} else {
		a.Flags &^= 1 << bit
	}
}

// Compare orders accounts by number.
func (a Account) Compare(b Account) int {
	return cmp.Compare(a.Number, b.Number)
}

// Equal reports structural equality.
func (a Account) Equal(b Account) bool {
	return a.ID == b.ID &&
		a.Number == b.Number &&
		a.Name == b.Name &&
		a.Type == b.Type &&
		a.VatCode == b.VatCode &&
		a.VatRate.Equal(b.VatRate) &&
		a.VatAccount1ID == b.VatAccount1ID &&
		a.VatAccount2ID == b.VatAccount2ID &&
		a.Flags == b.Flags
}

// Copy returns a copy with the identity cleared.
func (a Account) Copy() Account {
	a.ID = 0
	return a
}

// Validate checks the invariants enforced when the account is saved.
func (a Account) Validate() error {
	if a.Number == "" {
		return invalid("account", "number", "must not be empty")
	}
	if !a.Type.Valid() {
		return invalid("account", "type", "unknown type %d", int(a.Type))
	}
	if a.VatRate.IsNegative() {
		return invalid("account", "vatRate", "must not be negative (%s)", a.VatRate)
	}
	return nil
}

// SortAccounts sorts accounts in place by number.
func SortAccounts(accounts []Account) {
	slices.SortStableFunc(accounts, Account.Compare)
}
