// Package store defines the session and repository contract through which
// ledger state is read and written, and resolves connection strings to the
// engine implementations registered at process start.
package store

import (
	"context"
	"time"

	"github.com/priku/tilitin/internal/model"
)

// Session is one unit of work against the backing engine. Close releases any
// transaction that was neither committed nor rolled back. A session must only
// be used by the unit of work that opened it.
type Session interface {
	Commit() error
	Rollback() error
	Close() error
}

// Store is an opened backing engine. One instance is shared by the whole
// process; repositories are cheap and bound to a single session.
type Store interface {
	Open(url, user, password string) error
	OpenSession(ctx context.Context) (Session, error)
	Close() error

	Accounts(s Session) AccountRepository
	Headings(s Session) HeadingRepository
	Periods(s Session) PeriodRepository
	DocumentTypes(s Session) DocumentTypeRepository
	Documents(s Session) DocumentRepository
	Entries(s Session) EntryRepository
	EntryTemplates(s Session) EntryTemplateRepository
	Attachments(s Session) AttachmentRepository
}

// Save methods insert when the entity ID is 0 and update otherwise; the
// stored ID is written back into the argument.

type AccountRepository interface {
	GetAll() ([]model.Account, error)
	GetByID(id int) (model.Account, error)
	GetByNumber(number string) (model.Account, error)
	Save(a *model.Account) error
	Delete(id int) error
}

type HeadingRepository interface {
	GetAll() ([]model.COAHeading, error)
	Save(h *model.COAHeading) error
	Delete(id int) error
}

type PeriodRepository interface {
	GetAll() ([]model.Period, error)
	GetByID(id int) (model.Period, error)
	// GetByDate returns the period containing d.
	GetByDate(d time.Time) (model.Period, error)
	Save(p *model.Period) error
	Delete(id int) error
}

type DocumentTypeRepository interface {
	GetAll() ([]model.DocumentType, error)
	GetByID(id int) (model.DocumentType, error)
	Save(t *model.DocumentType) error
	Delete(id int) error
}

type DocumentRepository interface {
	GetByID(id int) (model.Document, error)
	GetByPeriodID(periodID int) ([]model.Document, error)
	GetByPeriodIDAndNumber(periodID, number int) (model.Document, error)
	CountByPeriodID(periodID int) (int, error)
	Save(d *model.Document) error
	// Delete removes the document together with its entries and attachments.
	Delete(id int) error
	DeleteByPeriodID(periodID int) error
	// Create allocates the next free number in [numberStart, numberEnd] for
	// the period and stores a new document with it. Allocation is linearized
	// per period.
	Create(periodID, numberStart, numberEnd int) (model.Document, error)
}

type EntryRepository interface {
	GetByDocumentID(documentID int) ([]model.Entry, error)
	GetByPeriodID(periodID int) ([]model.Entry, error)
	Save(e *model.Entry) error
	Delete(id int) error
	DeleteByDocumentID(documentID int) error
}

type EntryTemplateRepository interface {
	GetAll() ([]model.EntryTemplate, error)
	Save(t *model.EntryTemplate) error
	Delete(id int) error
}

type AttachmentRepository interface {
	GetByID(id int) (model.Attachment, error)
	GetByDocumentID(documentID int) ([]model.Attachment, error)
	CountByDocumentID(documentID int) (int, error)
	Save(a *model.Attachment) error
	Delete(id int) error
}
