package gormstore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
)

type periodRepo struct {
	st *Store
	tx *gorm.DB
}

func (r periodRepo) GetAll() ([]model.Period, error) {
	var rows []periodRow
	if err := r.tx.Order("start_date").Find(&rows).Error; err != nil {
		return nil, r.st.wrap("loading periods", err)
	}
	return mapRows(rows, periodRow.model), nil
}

func (r periodRepo) GetByID(id int) (model.Period, error) {
	var row periodRow
	if err := r.tx.Take(&row, id).Error; err != nil {
		return model.Period{}, r.st.wrap(fmt.Sprintf("loading period %d", id), err)
	}
	return row.model(), nil
}

func (r periodRepo) GetByDate(d time.Time) (model.Period, error) {
	d = model.DateOf(d)
	var row periodRow
	err := r.tx.Where("start_date <= ? AND end_date >= ?", d, d).Order("start_date").Take(&row).Error
	if err != nil {
		return model.Period{}, r.st.wrap("loading period for "+model.FormatDate(d), err)
	}
	return row.model(), nil
}

// Save stores the period row itself; locking and unlocking go through here.
func (r periodRepo) Save(p *model.Period) error {
	if err := p.Validate(); err != nil {
		return err
	}
	row := fromPeriod(*p)
	if err := r.st.save(r.tx, "saving period", &row, row.ID); err != nil {
		return err
	}
	p.ID = row.ID
	return nil
}

// Delete refuses to remove a period that still owns documents.
func (r periodRepo) Delete(id int) error {
	op := fmt.Sprintf("deleting period %d", id)
	n, err := r.st.count(r.tx, op, &documentRow{}, "period_id = ?", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return model.ValidationError{Entity: "period", Reason: fmt.Sprintf("period %d still has %d documents", id, n)}
	}
	return r.st.delete(r.tx, op, &periodRow{}, id)
}

// period loads a period for a save-time check, reporting a missing one as a
// validation failure.
func (st *Store) period(tx *gorm.DB, id int) (model.Period, error) {
	p, err := periodRepo{st: st, tx: tx}.GetByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return p, model.ValidationError{Entity: "document", Field: "periodId", Reason: fmt.Sprintf("period %d does not exist", id)}
	}
	return p, err
}

type documentTypeRepo struct {
	st *Store
	tx *gorm.DB
}

func (r documentTypeRepo) GetAll() ([]model.DocumentType, error) {
	var rows []documentTypeRow
	if err := r.tx.Order("number").Find(&rows).Error; err != nil {
		return nil, r.st.wrap("loading document types", err)
	}
	return mapRows(rows, documentTypeRow.model), nil
}

func (r documentTypeRepo) GetByID(id int) (model.DocumentType, error) {
	var row documentTypeRow
	if err := r.tx.Take(&row, id).Error; err != nil {
		return model.DocumentType{}, r.st.wrap(fmt.Sprintf("loading document type %d", id), err)
	}
	return row.model(), nil
}

func (r documentTypeRepo) Save(t *model.DocumentType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	row := fromDocumentType(*t)
	if err := r.st.save(r.tx, "saving document type "+t.Name, &row, row.ID); err != nil {
		return err
	}
	t.ID = row.ID
	return nil
}

func (r documentTypeRepo) Delete(id int) error {
	return r.st.delete(r.tx, fmt.Sprintf("deleting document type %d", id), &documentTypeRow{}, id)
}
