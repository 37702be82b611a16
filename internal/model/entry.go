package model

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Entry is one debit or credit line of a document.
type Entry struct {
	ID          int
	DocumentID  int
	AccountID   int
	Debit       bool
	Amount      decimal.NullDecimal // non-negative when set
	Description string
	RowNumber   int
	Flags       uint32
}

// IsValid reports whether the entry references an account and carries a
// non-zero amount.
func (e Entry) IsValid() bool {
	return e.AccountID > 0 && e.Amount.Valid && !e.Amount.Decimal.IsZero()
}

// SignedAmount returns the amount, negated for credit entries. A missing
// amount counts as zero.
func (e Entry) SignedAmount() decimal.Decimal {
	if !e.Amount.Valid {
		return decimal.Zero
	}
	if e.Debit {
		return e.Amount.Decimal
	}
	return e.Amount.Decimal.Neg()
}

// HasFlag reports whether bit is set.
func (e Entry) HasFlag(bit uint) bool {
	return e.Flags&(1<<bit) != 0
}

// SetFlag sets or clears bit.
func (e *Entry) SetFlag(bit uint, on bool) {
	if on {
		e.Flags |= 1 << bit
	} else {
		e.Flags &^= 1 << bit
	}
}

func (e Entry) Equal(o Entry) bool {
	return e.ID == o.ID &&
		e.DocumentID == o.DocumentID &&
		e.AccountID == o.AccountID &&
		e.Debit == o.Debit &&
		nullDecimalEqual(e.Amount, o.Amount) &&
		e.Description == o.Description &&
		e.RowNumber == o.RowNumber &&
		e.Flags == o.Flags
}

// Copy returns a copy with the identity cleared.
func (e Entry) Copy() Entry {
	e.ID = 0
	return e
}

// Validate checks the invariants enforced when the entry is saved.
func (e Entry) Validate() error {
	if e.DocumentID <= 0 {
		return invalid("entry", "documentId", "must reference a document")
	}
	if e.Amount.Valid && e.Amount.Decimal.IsNegative() {
		return invalid("entry", "amount", "must not be negative (%s)", e.Amount.Decimal)
	}
	return nil
}

// SortEntries sorts entries in place by row number.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int { return cmp.Compare(a.RowNumber, b.RowNumber) })
}

// Amount is a convenience constructor for a set entry amount.
func Amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func nullDecimalEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

// EntryTemplate is one row of an entry template; rows sharing Number form
// one template and are applied in RowNumber order.
type EntryTemplate struct {
	ID          int
	Number      int
	Name        string
	AccountID   int
	Debit       bool
	Amount      decimal.NullDecimal
	Description string
	RowNumber   int
}

func (t EntryTemplate) Equal(o EntryTemplate) bool {
	return t.ID == o.ID &&
		t.Number == o.Number &&
		t.Name == o.Name &&
		t.AccountID == o.AccountID &&
		t.Debit == o.Debit &&
		nullDecimalEqual(t.Amount, o.Amount) &&
		t.Description == o.Description &&
		t.RowNumber == o.RowNumber
}

// Copy returns a copy with the identity cleared.
func (t EntryTemplate) Copy() EntryTemplate {
	t.ID = 0
	return t
}

// Validate checks the invariants enforced when the template row is saved.
func (t EntryTemplate) Validate() error {
	if t.AccountID <= 0 {
		return invalid("entryTemplate", "accountId", "must reference an account")
	}
	if t.Amount.Valid && t.Amount.Decimal.IsNegative() {
		return invalid("entryTemplate", "amount", "must not be negative (%s)", t.Amount.Decimal)
	}
	return nil
}

// CompareTemplates orders template rows by template number, then row number.
func CompareTemplates(a, b EntryTemplate) int {
	if c := cmp.Compare(a.Number, b.Number); c != 0 {
		return c
	}
	return cmp.Compare(a.RowNumber, b.RowNumber)
}
