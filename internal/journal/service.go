package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/priku/tilitin/internal/attachment"
	"github.com/priku/tilitin/internal/dispatch"
	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
)

// Service provides the posting workflow on top of the store.
type Service struct {
	d         *dispatch.Dispatcher
	accounts  AccountChecker
	inspector *attachment.Inspector
}

// NewService creates a journal Service.
func NewService(d *dispatch.Dispatcher, accounts AccountChecker, inspector *attachment.Inspector) *Service {
	return &Service{d: d, accounts: accounts, inspector: inspector}
}

// AddDoubleParams holds parameters for creating a double-entry document.
type AddDoubleParams struct {
	Date          time.Time
	Description   string
	DebitAccount  int
	CreditAccount int
	Amount        decimal.Decimal
	// NumberStart and NumberEnd bound the document number, normally taken
	// from a document type.
	NumberStart int
	NumberEnd   int
}

// AddDouble creates a numbered document dated params.Date with a balanced
// debit and credit entry, all in one unit of work.
func (s *Service) AddDouble(ctx context.Context, params AddDoubleParams) (model.Document, error) {
	entries := []model.Entry{
		{AccountID: params.DebitAccount, Debit: true, Amount: decimal.NewNullDecimal(params.Amount), Description: params.Description, RowNumber: 0},
		{AccountID: params.CreditAccount, Debit: false, Amount: decimal.NewNullDecimal(params.Amount), Description: params.Description, RowNumber: 1},
	}
	if err := s.validate(entries); err != nil {
		return model.Document{}, err
	}

	return dispatch.RunOnStore(s.d, func(_ context.Context, st store.Store, sess store.Session) (model.Document, error) {
		period, err := periodOf(st, sess, params.Date)
		if err != nil {
			return model.Document{}, err
		}
		doc, err := st.Documents(sess).Create(period.ID, params.NumberStart, params.NumberEnd)
		if err != nil {
			return model.Document{}, fmt.Errorf("creating document: %w", err)
		}
		doc.Date = model.DateOf(params.Date)
		if err := st.Documents(sess).Save(&doc); err != nil {
			return model.Document{}, fmt.Errorf("dating document %d: %w", doc.Number, err)
		}
		for i := range entries {
			entries[i].DocumentID = doc.ID
			if err := st.Entries(sess).Save(&entries[i]); err != nil {
				return model.Document{}, fmt.Errorf("saving entry %d: %w", i, err)
			}
		}
		return doc, nil
	}).Await(ctx)
}

// Post replaces the entries of a document after validating that they
// balance. The assigned IDs are written back into entries.
func (s *Service) Post(ctx context.Context, documentID int, entries []model.Entry) error {
	for i := range entries {
		entries[i].DocumentID = documentID
		entries[i].ID = 0
	}
	if err := s.validate(entries); err != nil {
		return err
	}
	_, err := dispatch.RunOnStore(s.d, func(_ context.Context, st store.Store, sess store.Session) (struct{}, error) {
		if err := st.Entries(sess).DeleteByDocumentID(documentID); err != nil {
			return struct{}{}, fmt.Errorf("clearing document %d: %w", documentID, err)
		}
		for i := range entries {
			if err := st.Entries(sess).Save(&entries[i]); err != nil {
				return struct{}{}, fmt.Errorf("saving entry %d: %w", i, err)
			}
		}
		return struct{}{}, nil
	}).Await(ctx)
	return err
}

// DocumentView is a document with its entries and attachments.
type DocumentView struct {
	Document    model.Document
	Entries     []model.Entry
	Attachments []model.Attachment
}

// Document loads a document by period and number.
func (s *Service) Document(ctx context.Context, periodID, number int) (DocumentView, error) {
	return dispatch.RunOnStore(s.d, func(_ context.Context, st store.Store, sess store.Session) (DocumentView, error) {
		var v DocumentView
		var err error
		if v.Document, err = st.Documents(sess).GetByPeriodIDAndNumber(periodID, number); err != nil {
			return v, fmt.Errorf("loading document %d: %w", number, err)
		}
		if v.Entries, err = st.Entries(sess).GetByDocumentID(v.Document.ID); err != nil {
			return v, err
		}
		if v.Attachments, err = st.Attachments(sess).GetByDocumentID(v.Document.ID); err != nil {
			return v, err
		}
		return v, nil
	}).Await(ctx)
}

// DeleteDocument removes a document with its entries and attachments.
func (s *Service) DeleteDocument(ctx context.Context, documentID int) error {
	_, err := dispatch.RunOnStore(s.d, func(_ context.Context, st store.Store, sess store.Session) (struct{}, error) {
		return struct{}{}, st.Documents(sess).Delete(documentID)
	}).Await(ctx)
	return err
}

// PeriodBalances returns the signed balance of every account used in the
// period.
func (s *Service) PeriodBalances(ctx context.Context, periodID int) (map[int]decimal.Decimal, error) {
	entries, err := dispatch.RunOnStore(s.d, func(_ context.Context, st store.Store, sess store.Session) ([]model.Entry, error) {
		return st.Entries(sess).GetByPeriodID(periodID)
	}).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading entries of period %d: %w", periodID, err)
	}
	return Balances(entries), nil
}

// FromTemplate creates a document dated date and fills it from entry
// template number.
func (s *Service) FromTemplate(ctx context.Context, date time.Time, number, numberStart, numberEnd int) (model.Document, []model.Entry, error) {
	type result struct {
		doc     model.Document
		entries []model.Entry
	}
	r, err := dispatch.RunOnStore(s.d, func(_ context.Context, st store.Store, sess store.Session) (result, error) {
		templates, err := st.EntryTemplates(sess).GetAll()
		if err != nil {
			return result{}, err
		}
		period, err := periodOf(st, sess, date)
		if err != nil {
			return result{}, err
		}
		doc, err := st.Documents(sess).Create(period.ID, numberStart, numberEnd)
		if err != nil {
			return result{}, fmt.Errorf("creating document: %w", err)
		}
		doc.Date = model.DateOf(date)
		if err := st.Documents(sess).Save(&doc); err != nil {
			return result{}, err
		}
		entries := ApplyTemplate(templates, number, doc.ID)
		if len(entries) == 0 {
			return result{}, fmt.Errorf("entry template %d does not exist", number)
		}
		for i := range entries {
			if err := st.Entries(sess).Save(&entries[i]); err != nil {
				return result{}, fmt.Errorf("saving entry %d: %w", i, err)
			}
		}
		return result{doc, entries}, nil
	}).Await(ctx)
	return r.doc, r.entries, err
}

// Attach validates and measures a PDF and stores it on the document.
func (s *Service) Attach(ctx context.Context, documentID int, filename string, data []byte, description string) (model.Attachment, error) {
	a, err := dispatch.RunOnBackground(s.d, func(context.Context) (model.Attachment, error) {
		return s.inspector.Load(documentID, filename, data, description)
	}).Await(ctx)
	if err != nil {
		return a, err
	}
	return dispatch.RunOnStore(s.d, func(_ context.Context, st store.Store, sess store.Session) (model.Attachment, error) {
		if err := st.Attachments(sess).Save(&a); err != nil {
			return model.Attachment{}, fmt.Errorf("saving attachment %s: %w", a.Filename, err)
		}
		return a, nil
	}).Await(ctx)
}

func (s *Service) validate(entries []model.Entry) error {
	verrs := ValidateEntries(entries, s.accounts)
	if len(verrs) == 0 {
		return nil
	}
	errs := make([]error, len(verrs))
	for i, ve := range verrs {
		errs[i] = ve
	}
	return fmt.Errorf("validation failed: %w", errors.Join(errs...))
}

func periodOf(st store.Store, sess store.Session, date time.Time) (model.Period, error) {
	p, err := st.Periods(sess).GetByDate(date)
	if errors.Is(err, store.ErrNotFound) {
		return p, model.ValidationError{Entity: "document", Field: "date",
			Reason: fmt.Sprintf("no period contains %s", model.FormatDate(date))}
	}
	return p, err
}
