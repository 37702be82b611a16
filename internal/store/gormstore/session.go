package gormstore

import (
	"errors"

	"gorm.io/gorm"
)

var errSessionDone = errors.New("session already committed or rolled back")

// session owns one transaction. It is not safe for concurrent use.
type session struct {
	st   *Store
	tx   *gorm.DB
	done bool
}

func (s *session) Commit() error {
	if s.done {
		return s.st.wrap("committing session", errSessionDone)
	}
	s.done = true
	return s.st.wrap("committing session", s.tx.Commit().Error)
}

func (s *session) Rollback() error {
	if s.done {
		return s.st.wrap("rolling back session", errSessionDone)
	}
	s.done = true
	return s.st.wrap("rolling back session", s.tx.Rollback().Error)
}

// Close rolls back unless the session was already finished. It is idempotent.
func (s *session) Close() error {
	if s.done {
		return nil
	}
	return s.Rollback()
}
