package gormstore

import (
	"gorm.io/gorm"

	"github.com/priku/tilitin/internal/store"
)

// save inserts row when id is 0 and otherwise updates every column except
// the omitted ones.
func (st *Store) save(tx *gorm.DB, op string, row any, id int, omit ...string) error {
	if id == 0 {
		return st.wrap(op, tx.Create(row).Error)
	}
	q := tx.Model(row).Select("*")
	if len(omit) > 0 {
		q = q.Omit(omit...)
	}
	res := q.Updates(row)
	if res.Error != nil {
		return st.wrap(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (st *Store) delete(tx *gorm.DB, op string, row any, id int) error {
	res := tx.Delete(row, id)
	if res.Error != nil {
		return st.wrap(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (st *Store) count(tx *gorm.DB, op string, row any, query string, args ...any) (int, error) {
	var n int64
	if err := tx.Model(row).Where(query, args...).Count(&n).Error; err != nil {
		return 0, st.wrap(op, err)
	}
	return int(n), nil
}
