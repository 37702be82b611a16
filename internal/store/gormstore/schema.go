package gormstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/priku/tilitin/internal/model"
)

var allRows = []any{
	&accountRow{},
	&headingRow{},
	&periodRow{},
	&documentTypeRow{},
	&documentRow{},
	&entryRow{},
	&entryTemplateRow{},
	&attachmentRow{},
}

type accountRow struct {
	ID            int             `gorm:"primaryKey"`
	Number        string          `gorm:"size:10;not null;uniqueIndex"`
	Name          string          `gorm:"size:100;not null"`
	Type          int             `gorm:"not null"`
	VatCode       int             `gorm:"not null"`
	VatRate       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	VatAccount1ID int             `gorm:"column:vat_account1_id;not null"`
	VatAccount2ID int             `gorm:"column:vat_account2_id;not null"`
	Flags         int             `gorm:"not null"`
}

func (accountRow) TableName() string { return "accounts" }

func fromAccount(a model.Account) accountRow {
	return accountRow{
		ID:            a.ID,
		Number:        a.Number,
		Name:          a.Name,
		Type:          int(a.Type),
		VatCode:       a.VatCode,
		VatRate:       a.VatRate,
		VatAccount1ID: a.VatAccount1ID,
		VatAccount2ID: a.VatAccount2ID,
		Flags:         a.Flags,
	}
}

func (r accountRow) model() model.Account {
	return model.Account{
		ID:            r.ID,
		Number:        r.Number,
		Name:          r.Name,
		Type:          model.AccountType(r.Type),
		VatCode:       r.VatCode,
		VatRate:       r.VatRate,
		VatAccount1ID: r.VatAccount1ID,
		VatAccount2ID: r.VatAccount2ID,
		Flags:         r.Flags,
	}
}

type headingRow struct {
	ID     int    `gorm:"primaryKey"`
	Number string `gorm:"size:10;not null;index"`
	Text   string `gorm:"size:100;not null"`
	Level  int    `gorm:"not null"`
}

func (headingRow) TableName() string { return "coa_headings" }

func fromHeading(h model.COAHeading) headingRow {
	return headingRow{ID: h.ID, Number: h.Number, Text: h.Text, Level: h.Level}
}

func (r headingRow) model() model.COAHeading {
	return model.COAHeading{ID: r.ID, Number: r.Number, Text: r.Text, Level: r.Level}
}

type periodRow struct {
	ID        int       `gorm:"primaryKey"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	Locked    bool      `gorm:"not null"`
}

func (periodRow) TableName() string { return "periods" }

func fromPeriod(p model.Period) periodRow {
	return periodRow{
		ID:        p.ID,
		StartDate: model.DateOf(p.StartDate),
		EndDate:   model.DateOf(p.EndDate),
		Locked:    p.Locked,
	}
}

func (r periodRow) model() model.Period {
	return model.Period{
		ID:        r.ID,
		StartDate: model.DateOf(r.StartDate),
		EndDate:   model.DateOf(r.EndDate),
		Locked:    r.Locked,
	}
}

type documentTypeRow struct {
	ID          int    `gorm:"primaryKey"`
	Number      int    `gorm:"not null"`
	Name        string `gorm:"size:100;not null"`
	NumberStart int    `gorm:"not null"`
	NumberEnd   int    `gorm:"not null"`
}

func (documentTypeRow) TableName() string { return "document_types" }

func fromDocumentType(t model.DocumentType) documentTypeRow {
	return documentTypeRow(t)
}

func (r documentTypeRow) model() model.DocumentType {
	return model.DocumentType(r)
}

type documentRow struct {
	ID       int       `gorm:"primaryKey"`
	Number   int       `gorm:"not null;uniqueIndex:idx_documents_period_number,priority:2"`
	PeriodID int       `gorm:"not null;uniqueIndex:idx_documents_period_number,priority:1"`
	Date     time.Time `gorm:"type:date;not null"`
}

func (documentRow) TableName() string { return "documents" }

func fromDocument(d model.Document) documentRow {
	return documentRow{ID: d.ID, Number: d.Number, PeriodID: d.PeriodID, Date: model.DateOf(d.Date)}
}

func (r documentRow) model() model.Document {
	return model.Document{ID: r.ID, Number: r.Number, PeriodID: r.PeriodID, Date: model.DateOf(r.Date)}
}

type entryRow struct {
	ID          int                 `gorm:"primaryKey"`
	DocumentID  int                 `gorm:"not null;index"`
	AccountID   int                 `gorm:"not null;index"`
	Debit       bool                `gorm:"not null"`
	Amount      decimal.NullDecimal `gorm:"type:numeric(19,2)"`
	Description string              `gorm:"size:100;not null"`
	RowNumber   int                 `gorm:"column:row_no;not null"`
	Flags       int64               `gorm:"not null"`
}

func (entryRow) TableName() string { return "entries" }

func fromEntry(e model.Entry) entryRow {
	return entryRow{
		ID:          e.ID,
		DocumentID:  e.DocumentID,
		AccountID:   e.AccountID,
		Debit:       e.Debit,
		Amount:      e.Amount,
		Description: e.Description,
		RowNumber:   e.RowNumber,
		Flags:       int64(e.Flags),
	}
}

func (r entryRow) model() model.Entry {
	return model.Entry{
		ID:          r.ID,
		DocumentID:  r.DocumentID,
		AccountID:   r.AccountID,
		Debit:       r.Debit,
		Amount:      r.Amount,
		Description: r.Description,
		RowNumber:   r.RowNumber,
		Flags:       uint32(r.Flags),
	}
}

type entryTemplateRow struct {
	ID          int                 `gorm:"primaryKey"`
	Number      int                 `gorm:"not null;index"`
	Name        string              `gorm:"size:100;not null"`
	AccountID   int                 `gorm:"not null"`
	Debit       bool                `gorm:"not null"`
	Amount      decimal.NullDecimal `gorm:"type:numeric(19,2)"`
	Description string              `gorm:"size:100;not null"`
	RowNumber   int                 `gorm:"column:row_no;not null"`
}

func (entryTemplateRow) TableName() string { return "entry_templates" }

func fromEntryTemplate(t model.EntryTemplate) entryTemplateRow {
	return entryTemplateRow(t)
}

func (r entryTemplateRow) model() model.EntryTemplate {
	return model.EntryTemplate(r)
}

type attachmentRow struct {
	ID          int    `gorm:"primaryKey"`
	DocumentID  int    `gorm:"not null;index"`
	Filename    string `gorm:"size:255;not null"`
	ContentType string `gorm:"size:100;not null"`
	Data        []byte `gorm:"not null"`
	FileSize    int64  `gorm:"not null"`
	PageCount   *int
	CreatedAt   time.Time `gorm:"not null"`
	Description string    `gorm:"size:255;not null"`
}

func (attachmentRow) TableName() string { return "attachments" }

func fromAttachment(a model.Attachment) attachmentRow {
	return attachmentRow{
		ID:          a.ID,
		DocumentID:  a.DocumentID,
		Filename:    a.Filename,
		ContentType: a.ContentType,
		Data:        a.Data,
		FileSize:    a.FileSize,
		PageCount:   a.PageCount,
		CreatedAt:   a.CreatedAt,
		Description: a.Description,
	}
}

func (r attachmentRow) model() model.Attachment {
	return model.Attachment{
		ID:          r.ID,
		DocumentID:  r.DocumentID,
		Filename:    r.Filename,
		ContentType: r.ContentType,
		Data:        r.Data,
		FileSize:    r.FileSize,
		PageCount:   r.PageCount,
		CreatedAt:   r.CreatedAt.UTC(),
		Description: r.Description,
	}
}

func mapRows[R, M any](rows []R, conv func(R) M) []M {
	out := make([]M, len(rows))
	for i, r := range rows {
		out[i] = conv(r)
	}
	return out
}
