package gormstore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/priku/tilitin/internal/model"
)

type entryRepo struct {
	st *Store
	tx *gorm.DB
}

func (r entryRepo) GetByDocumentID(documentID int) ([]model.Entry, error) {
	var rows []entryRow
	if err := r.tx.Where("document_id = ?", documentID).Order("row_no").Order("id").Find(&rows).Error; err != nil {
		return nil, r.st.wrap(fmt.Sprintf("loading entries of document %d", documentID), err)
	}
	return mapRows(rows, entryRow.model), nil
}

func (r entryRepo) GetByPeriodID(periodID int) ([]model.Entry, error) {
	docs := r.tx.Model(&documentRow{}).Select("id").Where("period_id = ?", periodID)
	var rows []entryRow
	err := r.tx.Where("document_id IN (?)", docs).Order("document_id").Order("row_no").Order("id").Find(&rows).Error
	if err != nil {
		return nil, r.st.wrap(fmt.Sprintf("loading entries of period %d", periodID), err)
	}
	return mapRows(rows, entryRow.model), nil
}

// Save rejects entries of documents in locked periods, including moving an
// entry away from one. It does not check that the document balances.
func (r entryRepo) Save(e *model.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := r.st.checkDocumentUnlocked(r.tx, e.DocumentID); err != nil {
		return err
	}
	if e.ID != 0 {
		var old entryRow
		if err := r.tx.Take(&old, e.ID).Error; err != nil {
			return r.st.wrap(fmt.Sprintf("loading entry %d", e.ID), err)
		}
		if old.DocumentID != e.DocumentID {
			if err := r.st.checkDocumentUnlocked(r.tx, old.DocumentID); err != nil {
				return err
			}
		}
	}
	row := fromEntry(*e)
	if err := r.st.save(r.tx, fmt.Sprintf("saving entry of document %d", e.DocumentID), &row, row.ID); err != nil {
		return err
	}
	e.ID = row.ID
	return nil
}

func (r entryRepo) Delete(id int) error {
	op := fmt.Sprintf("deleting entry %d", id)
	var row entryRow
	if err := r.tx.Take(&row, id).Error; err != nil {
		return r.st.wrap(op, err)
	}
	if err := r.st.checkDocumentUnlocked(r.tx, row.DocumentID); err != nil {
		return err
	}
	return r.st.delete(r.tx, op, &entryRow{}, id)
}

func (r entryRepo) DeleteByDocumentID(documentID int) error {
	if err := r.st.checkDocumentUnlocked(r.tx, documentID); err != nil {
		return err
	}
	err := r.tx.Where("document_id = ?", documentID).Delete(&entryRow{}).Error
	return r.st.wrap(fmt.Sprintf("deleting entries of document %d", documentID), err)
}

type entryTemplateRepo struct {
	st *Store
	tx *gorm.DB
}

func (r entryTemplateRepo) GetAll() ([]model.EntryTemplate, error) {
	var rows []entryTemplateRow
	if err := r.tx.Order("number").Order("row_no").Find(&rows).Error; err != nil {
		return nil, r.st.wrap("loading entry templates", err)
	}
	return mapRows(rows, entryTemplateRow.model), nil
}

func (r entryTemplateRepo) Save(t *model.EntryTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	row := fromEntryTemplate(*t)
	if err := r.st.save(r.tx, fmt.Sprintf("saving entry template %d", t.Number), &row, row.ID); err != nil {
		return err
	}
	t.ID = row.ID
	return nil
}

func (r entryTemplateRepo) Delete(id int) error {
	return r.st.delete(r.tx, fmt.Sprintf("deleting entry template %d", id), &entryTemplateRow{}, id)
}

type attachmentRepo struct {
	st *Store
	tx *gorm.DB
}

func (r attachmentRepo) GetByID(id int) (model.Attachment, error) {
	var row attachmentRow
	if err := r.tx.Take(&row, id).Error; err != nil {
		return model.Attachment{}, r.st.wrap(fmt.Sprintf("loading attachment %d", id), err)
	}
	return row.model(), nil
}

func (r attachmentRepo) GetByDocumentID(documentID int) ([]model.Attachment, error) {
	var rows []attachmentRow
	if err := r.tx.Where("document_id = ?", documentID).Order("id").Find(&rows).Error; err != nil {
		return nil, r.st.wrap(fmt.Sprintf("loading attachments of document %d", documentID), err)
	}
	return mapRows(rows, attachmentRow.model), nil
}

func (r attachmentRepo) CountByDocumentID(documentID int) (int, error) {
	return r.st.count(r.tx, fmt.Sprintf("counting attachments of document %d", documentID), &attachmentRow{}, "document_id = ?", documentID)
}

func (r attachmentRepo) Save(a *model.Attachment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := r.st.checkDocumentUnlocked(r.tx, a.DocumentID); err != nil {
		return err
	}
	var old attachmentRow
	if a.ID != 0 {
		if err := r.tx.Select("id", "document_id", "created_at").Take(&old, a.ID).Error; err != nil {
			return r.st.wrap(fmt.Sprintf("loading attachment %d", a.ID), err)
		}
		if old.DocumentID != a.DocumentID {
			if err := r.st.checkDocumentUnlocked(r.tx, old.DocumentID); err != nil {
				return err
			}
		}
	}
	a.FileSize = int64(len(a.Data))
	row := fromAttachment(*a)
	if err := r.st.save(r.tx, "saving attachment "+a.Filename, &row, row.ID, "created_at"); err != nil {
		return err
	}
	if a.ID == 0 {
		a.ID = row.ID
		a.CreatedAt = row.CreatedAt
	} else {
		a.CreatedAt = old.CreatedAt
	}
	return nil
}

func (r attachmentRepo) Delete(id int) error {
	a, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if err := r.st.checkDocumentUnlocked(r.tx, a.DocumentID); err != nil {
		return err
	}
	return r.st.delete(r.tx, fmt.Sprintf("deleting attachment %d", id), &attachmentRow{}, id)
}
