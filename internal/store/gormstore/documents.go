package gormstore

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
)

type documentRepo struct {
	st *Store
	tx *gorm.DB
}

func (r documentRepo) GetByID(id int) (model.Document, error) {
	var row documentRow
	if err := r.tx.Take(&row, id).Error; err != nil {
		return model.Document{}, r.st.wrap(fmt.Sprintf("loading document %d", id), err)
	}
	return row.model(), nil
}

func (r documentRepo) GetByPeriodID(periodID int) ([]model.Document, error) {
	var rows []documentRow
	if err := r.tx.Where("period_id = ?", periodID).Order("number").Find(&rows).Error; err != nil {
		return nil, r.st.wrap(fmt.Sprintf("loading documents of period %d", periodID), err)
	}
	return mapRows(rows, documentRow.model), nil
}

func (r documentRepo) GetByPeriodIDAndNumber(periodID, number int) (model.Document, error) {
	var row documentRow
	err := r.tx.Where("period_id = ? AND number = ?", periodID, number).Take(&row).Error
	if err != nil {
		return model.Document{}, r.st.wrap(fmt.Sprintf("loading document %d of period %d", number, periodID), err)
	}
	return row.model(), nil
}

func (r documentRepo) CountByPeriodID(periodID int) (int, error) {
	return r.st.count(r.tx, fmt.Sprintf("counting documents of period %d", periodID), &documentRow{}, "period_id = ?", periodID)
}

// Save checks that the document's date falls within its period and that
// neither its current nor its previous period is locked. Entry balance is
// not checked here.
func (r documentRepo) Save(d *model.Document) error {
	p, err := r.st.period(r.tx, d.PeriodID)
	if err != nil {
		return err
	}
	if err := d.ValidateIn(p); err != nil {
		return err
	}
	if d.ID != 0 {
		old, err := r.GetByID(d.ID)
		if err != nil {
			return err
		}
		if old.PeriodID != d.PeriodID {
			if err := r.st.checkPeriodUnlocked(r.tx, old.PeriodID); err != nil {
				return err
			}
		}
	}
	row := fromDocument(*d)
	if err := r.st.save(r.tx, fmt.Sprintf("saving document %d", d.Number), &row, row.ID); err != nil {
		return err
	}
	d.ID = row.ID
	return nil
}

// Delete removes the document, its entries and its attachments.
func (r documentRepo) Delete(id int) error {
	d, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if err := r.st.checkPeriodUnlocked(r.tx, d.PeriodID); err != nil {
		return err
	}
	op := fmt.Sprintf("deleting document %d", id)
	if err := r.tx.Where("document_id = ?", id).Delete(&entryRow{}).Error; err != nil {
		return r.st.wrap(op, err)
	}
	if err := r.tx.Where("document_id = ?", id).Delete(&attachmentRow{}).Error; err != nil {
		return r.st.wrap(op, err)
	}
	return r.st.delete(r.tx, op, &documentRow{}, id)
}

// DeleteByPeriodID removes every document of the period with their entries
// and attachments.
func (r documentRepo) DeleteByPeriodID(periodID int) error {
	if err := r.st.checkPeriodUnlocked(r.tx, periodID); err != nil {
		return err
	}
	op := fmt.Sprintf("deleting documents of period %d", periodID)
	docs := r.tx.Model(&documentRow{}).Select("id").Where("period_id = ?", periodID)
	if err := r.tx.Where("document_id IN (?)", docs).Delete(&entryRow{}).Error; err != nil {
		return r.st.wrap(op, err)
	}
	if err := r.tx.Where("document_id IN (?)", docs).Delete(&attachmentRow{}).Error; err != nil {
		return r.st.wrap(op, err)
	}
	return r.st.wrap(op, r.tx.Where("period_id = ?", periodID).Delete(&documentRow{}).Error)
}

// Create allocates max(numberStart, highest number in range + 1) and stores
// the new document within the session's transaction. The period row and the
// highest document in range are read with FOR UPDATE where the engine
// supports it; engines without row locking serialize write transactions, and
// the (period_id, number) unique index backs both.
//
// The new document takes the date of the highest document in range, or the
// period start when the range is still empty.
func (r documentRepo) Create(periodID, numberStart, numberEnd int) (model.Document, error) {
	if numberStart > numberEnd {
		return model.Document{}, model.ValidationError{Entity: "document", Field: "number",
			Reason: fmt.Sprintf("range %d..%d is empty", numberStart, numberEnd)}
	}
	op := fmt.Sprintf("creating document in period %d", periodID)

	var prow periodRow
	if err := r.locking().Take(&prow, periodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Document{}, model.ValidationError{Entity: "document", Field: "periodId",
				Reason: fmt.Sprintf("period %d does not exist", periodID)}
		}
		return model.Document{}, r.st.wrap(op, err)
	}
	p := prow.model()
	if err := model.CheckUnlocked(p); err != nil {
		return model.Document{}, err
	}

	currentMax, date := 0, p.StartDate
	var last documentRow
	err := r.locking().
		Where("period_id = ? AND number BETWEEN ? AND ?", periodID, numberStart, numberEnd).
		Order("number DESC").
		Take(&last).Error
	switch {
	case err == nil:
		currentMax, date = last.Number, last.Date
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return model.Document{}, r.st.wrap(op, err)
	}

	next, ok := model.NextDocumentNumber(numberStart, numberEnd, currentMax)
	if !ok {
		return model.Document{}, store.RangeExhaustedError{PeriodID: periodID, NumberStart: numberStart, NumberEnd: numberEnd}
	}
	row := documentRow{Number: next, PeriodID: periodID, Date: model.DateOf(date)}
	if err := r.tx.Create(&row).Error; err != nil {
		return model.Document{}, r.st.wrap(op, err)
	}
	return row.model(), nil
}

func (r documentRepo) locking() *gorm.DB {
	if r.st.dialect.RowLocking() {
		return r.tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return r.tx
}

func (st *Store) checkPeriodUnlocked(tx *gorm.DB, periodID int) error {
	p, err := st.period(tx, periodID)
	if err != nil {
		return err
	}
	return model.CheckUnlocked(p)
}

// checkDocumentUnlocked verifies that the document exists and that its period
// accepts edits.
func (st *Store) checkDocumentUnlocked(tx *gorm.DB, documentID int) error {
	d, err := documentRepo{st: st, tx: tx}.GetByID(documentID)
	if errors.Is(err, store.ErrNotFound) {
		return model.ValidationError{Entity: "document", Reason: fmt.Sprintf("document %d does not exist", documentID)}
	}
	if err != nil {
		return err
	}
	return st.checkPeriodUnlocked(tx, d.PeriodID)
}
