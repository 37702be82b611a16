package gormstore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/priku/tilitin/internal/model"
)

type accountRepo struct {
	st *Store
	tx *gorm.DB
}

func (r accountRepo) GetAll() ([]model.Account, error) {
	var rows []accountRow
	if err := r.tx.Order("number").Find(&rows).Error; err != nil {
		return nil, r.st.wrap("loading accounts", err)
	}
	return mapRows(rows, accountRow.model), nil
}

func (r accountRepo) GetByID(id int) (model.Account, error) {
	var row accountRow
	if err := r.tx.Take(&row, id).Error; err != nil {
		return model.Account{}, r.st.wrap(fmt.Sprintf("loading account %d", id), err)
	}
	return row.model(), nil
}

func (r accountRepo) GetByNumber(number string) (model.Account, error) {
	var row accountRow
	if err := r.tx.Where("number = ?", number).Take(&row).Error; err != nil {
		return model.Account{}, r.st.wrap("loading account "+number, err)
	}
	return row.model(), nil
}

func (r accountRepo) Save(a *model.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	row := fromAccount(*a)
	if err := r.st.save(r.tx, "saving account "+a.Number, &row, row.ID); err != nil {
		return err
	}
	a.ID = row.ID
	return nil
}

// Delete refuses to remove an account that entries still reference.
func (r accountRepo) Delete(id int) error {
	used, err := r.st.count(r.tx, fmt.Sprintf("deleting account %d", id), &entryRow{}, "account_id = ?", id)
	if err != nil {
		return err
	}
	if used > 0 {
		return model.ValidationError{Entity: "account", Reason: fmt.Sprintf("account %d is used by %d entries", id, used)}
	}
	return r.st.delete(r.tx, fmt.Sprintf("deleting account %d", id), &accountRow{}, id)
}

type headingRepo struct {
	st *Store
	tx *gorm.DB
}

func (r headingRepo) GetAll() ([]model.COAHeading, error) {
	var rows []headingRow
	if err := r.tx.Order("number").Order("level").Find(&rows).Error; err != nil {
		return nil, r.st.wrap("loading headings", err)
	}
	return mapRows(rows, headingRow.model), nil
}

func (r headingRepo) Save(h *model.COAHeading) error {
	if err := h.Validate(); err != nil {
		return err
	}
	row := fromHeading(*h)
	if err := r.st.save(r.tx, "saving heading "+h.Number, &row, row.ID); err != nil {
		return err
	}
	h.ID = row.ID
	return nil
}

func (r headingRepo) Delete(id int) error {
	return r.st.delete(r.tx, fmt.Sprintf("deleting heading %d", id), &headingRow{}, id)
}
