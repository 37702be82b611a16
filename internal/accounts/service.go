package accounts

import (
	"context"
	"fmt"

	"github.com/priku/tilitin/internal/dispatch"
	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
)

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	headings []model.COAHeading
	byID     map[int]model.Account
	byNumber map[string]model.Account
}

// NewService creates a Service from accounts and headings.
func NewService(accounts []model.Account, headings []model.COAHeading) *Service {
	accounts = append([]model.Account(nil), accounts...)
	headings = append([]model.COAHeading(nil), headings...)
	model.SortAccounts(accounts)
	model.SortHeadings(headings)

	byID := make(map[int]model.Account, len(accounts))
	byNumber := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
		byNumber[a.Number] = a
	}
	return &Service{accounts: accounts, headings: headings, byID: byID, byNumber: byNumber}
}

// Load reads accounts and headings concurrently and returns a Service.
func Load(ctx context.Context, d *dispatch.Dispatcher) (*Service, error) {
	accts, headings, err := dispatch.Parallel2(ctx, d,
		func(ctx context.Context) ([]model.Account, error) {
			return dispatch.RunOnStore(d, func(_ context.Context, st store.Store, s store.Session) ([]model.Account, error) {
				return st.Accounts(s).GetAll()
			}).Await(ctx)
		},
		func(ctx context.Context) ([]model.COAHeading, error) {
			return dispatch.RunOnStore(d, func(_ context.Context, st store.Store, s store.Session) ([]model.COAHeading, error) {
				return st.Headings(s).GetAll()
			}).Await(ctx)
		})
	if err != nil {
		return nil, fmt.Errorf("loading chart of accounts: %w", err)
	}
	return NewService(accts, headings), nil
}

// All returns all accounts ordered by number.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Headings returns all headings ordered by number and level.
func (s *Service) Headings() []model.COAHeading {
	return s.headings
}

// Get returns an account by ID.
func (s *Service) Get(id int) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// ByNumber returns an account by its number.
func (s *Service) ByNumber(number string) (model.Account, bool) {
	a, ok := s.byNumber[number]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// ChartRow is one line of the chart view: exactly one of Heading and Account
// is set.
type ChartRow struct {
	Heading *model.COAHeading
	Account *model.Account
}

// Number returns the sort key of the row.
func (r ChartRow) Number() string {
	if r.Heading != nil {
		return r.Heading.Number
	}
	return r.Account.Number
}

// Chart merges headings and accounts in number order. A heading sorts before
// accounts with the same number.
func (s *Service) Chart() []ChartRow {
	rows := make([]ChartRow, 0, len(s.accounts)+len(s.headings))
	i, j := 0, 0
	for i < len(s.headings) || j < len(s.accounts) {
		if j == len(s.accounts) || (i < len(s.headings) && s.headings[i].Number <= s.accounts[j].Number) {
			rows = append(rows, ChartRow{Heading: &s.headings[i]})
			i++
			continue
		}
		rows = append(rows, ChartRow{Account: &s.accounts[j]})
		j++
	}
	return rows
}

// Seed stores accounts and headings in one unit of work, writing the assigned
// IDs back into the slices.
func Seed(ctx context.Context, d *dispatch.Dispatcher, accounts []model.Account, headings []model.COAHeading) error {
	_, err := dispatch.RunOnStore(d, func(_ context.Context, st store.Store, s store.Session) (struct{}, error) {
		for i := range accounts {
			if err := st.Accounts(s).Save(&accounts[i]); err != nil {
				return struct{}{}, fmt.Errorf("saving account %s: %w", accounts[i].Number, err)
			}
		}
		for i := range headings {
			if err := st.Headings(s).Save(&headings[i]); err != nil {
				return struct{}{}, fmt.Errorf("saving heading %s: %w", headings[i].Number, err)
			}
		}
		return struct{}{}, nil
	}).Await(ctx)
	return err
}
