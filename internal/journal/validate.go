package journal

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/priku/tilitin/internal/model"
)

// ValidationError describes a single rule violation in a set of entries.
type ValidationError struct {
	Rule        int
	DocumentID  int
	Row         int
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rule %d [document %d row %d]: %s", e.Rule, e.DocumentID, e.Row, e.Description)
}

// As lets errors.As match a rule violation as a model.ValidationError.
func (e ValidationError) As(target any) bool {
	mv, ok := target.(*model.ValidationError)
	if !ok {
		return false
	}
	*mv = model.ValidationError{
		Entity: "document",
		Field:  "entries",
		Reason: fmt.Sprintf("rule %d (row %d): %s", e.Rule, e.Row, e.Description),
	}
	return true
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// ValidateEntries enforces the posting rules on the entries of one or more
// documents:
//
//  1. each document's debits equal its credits
//  2. every entry has an account and a non-zero amount
//  3. every account exists
//  4. amounts have at most two decimal places
func ValidateEntries(entries []model.Entry, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	byDoc := make(map[int][]model.Entry)
	var docs []int
	for _, e := range entries {
		if _, seen := byDoc[e.DocumentID]; !seen {
			docs = append(docs, e.DocumentID)
		}
		byDoc[e.DocumentID] = append(byDoc[e.DocumentID], e)
	}

	for _, doc := range docs {
		debit, credit := totals(byDoc[doc])
		if !debit.Equal(credit) {
			errs = append(errs, ValidationError{
				Rule:        1,
				DocumentID:  doc,
				Description: fmt.Sprintf("debits (%s) != credits (%s)", debit.StringFixed(2), credit.StringFixed(2)),
			})
		}
	}

	hundred := decimal.NewFromInt(100)
	for _, e := range entries {
		if !e.IsValid() {
			errs = append(errs, ValidationError{
				Rule:        2,
				DocumentID:  e.DocumentID,
				Row:         e.RowNumber,
				Description: "entry needs an account and a non-zero amount",
			})
		}

		if e.AccountID > 0 && !accounts.Exists(e.AccountID) {
			errs = append(errs, ValidationError{
				Rule:        3,
				DocumentID:  e.DocumentID,
				Row:         e.RowNumber,
				Description: fmt.Sprintf("unknown account %d", e.AccountID),
			})
		}

		if a := e.Amount.Decimal; e.Amount.Valid && !a.Mul(hundred).Equal(a.Mul(hundred).Floor()) {
			errs = append(errs, ValidationError{
				Rule:        4,
				DocumentID:  e.DocumentID,
				Row:         e.RowNumber,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", a),
			})
		}
	}

	return errs
}

func totals(entries []model.Entry) (debit, credit decimal.Decimal) {
	for _, e := range entries {
		if !e.Amount.Valid {
			continue
		}
		if e.Debit {
			debit = debit.Add(e.Amount.Decimal)
		} else {
			credit = credit.Add(e.Amount.Decimal)
		}
	}
	return debit, credit
}

// UnbalancedError reports a document whose debits and credits differ.
type UnbalancedError struct {
	Debit, Credit decimal.Decimal
}

func (e UnbalancedError) Error() string {
	return fmt.Sprintf("debits (%s) != credits (%s)", e.Debit.StringFixed(2), e.Credit.StringFixed(2))
}

// CheckBalanced returns the debit and credit totals of entries, and an
// UnbalancedError when they differ. Missing amounts count as zero.
func CheckBalanced(entries []model.Entry) (debit, credit decimal.Decimal, err error) {
	debit, credit = totals(entries)
	if !debit.Equal(credit) {
		return debit, credit, UnbalancedError{Debit: debit, Credit: credit}
	}
	return debit, credit, nil
}

// Balances sums the signed amounts of entries per account.
func Balances(entries []model.Entry) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal)
	for _, e := range entries {
		out[e.AccountID] = out[e.AccountID].Add(e.SignedAmount())
	}
	return out
}

// ApplyTemplate turns the rows of template number into unsaved entries for
// documentID, ordered and renumbered from 0.
func ApplyTemplate(templates []model.EntryTemplate, number, documentID int) []model.Entry {
	var rows []model.EntryTemplate
	for _, t := range templates {
		if t.Number == number {
			rows = append(rows, t)
		}
	}
	slices.SortStableFunc(rows, func(a, b model.EntryTemplate) int {
		return cmp.Compare(a.RowNumber, b.RowNumber)
	})

	entries := make([]model.Entry, len(rows))
	for i, t := range rows {
		entries[i] = model.Entry{
			DocumentID:  documentID,
			AccountID:   t.AccountID,
			Debit:       t.Debit,
			Amount:      t.Amount,
			Description: t.Description,
			RowNumber:   i,
		}
	}
	return entries
}
