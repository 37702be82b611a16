// Package gormstore implements store.Store on top of gorm. Engine packages
// supply a Dialect and register the result under their connection prefix.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/priku/tilitin/internal/store"
)

// Dialect is what differs between engines.
type Dialect interface {
	// Name is used in log fields and error messages.
	Name() string
	// Dialector turns a connection string into a gorm dialector.
	Dialector(url, user, password string) (gorm.Dialector, error)
	// IsUniqueViolation reports whether err is a unique-key violation.
	IsUniqueViolation(err error) bool
	// RowLocking reports whether SELECT ... FOR UPDATE is supported. Engines
	// without it must serialize write transactions themselves.
	RowLocking() bool
}

// Store is a store.Store backed by a gorm connection pool.
type Store struct {
	dialect Dialect
	opts    store.Options
	db      *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New returns an unopened store for dialect.
func New(dialect Dialect, opts store.Options) *Store {
	return &Store{dialect: dialect, opts: opts}
}

// Open connects to the engine and creates the schema unless disabled.
func (st *Store) Open(url, user, password string) error {
	if st.db != nil {
		return errors.New("store already open")
	}
	dialector, err := st.dialect.Dialector(url, user, password)
	if err != nil {
		return err
	}

	log := st.opts.Log().WithField("engine", st.dialect.Name())
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return store.Wrap("opening "+st.dialect.Name()+" store", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return store.Wrap("opening "+st.dialect.Name()+" store", err)
	}
	if st.opts.MaxSessions > 0 {
		sqlDB.SetMaxOpenConns(st.opts.MaxSessions)
	}

	if !st.opts.SkipMigrate {
		if err := db.AutoMigrate(allRows...); err != nil {
			sqlDB.Close()
			return store.Wrap("migrating schema", err)
		}
	}

	st.db = db
	log.Debug("store opened")
	return nil
}

// Close releases the connection pool.
func (st *Store) Close() error {
	if st.db == nil {
		return nil
	}
	sqlDB, err := st.db.DB()
	if err != nil {
		return store.Wrap("closing store", err)
	}
	st.db = nil
	return store.Wrap("closing store", sqlDB.Close())
}

// OpenSession begins a transaction bound to ctx.
func (st *Store) OpenSession(ctx context.Context) (store.Session, error) {
	if st.db == nil {
		return nil, &store.DataAccessError{Op: "opening session", Err: errors.New("store is not open")}
	}
	tx := st.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, st.wrap("opening session", tx.Error)
	}
	return &session{st: st, tx: tx}, nil
}

func (st *Store) txOf(s store.Session) *gorm.DB {
	ss, ok := s.(*session)
	if !ok || ss.st != st {
		panic(fmt.Sprintf("gormstore: session %T does not belong to this store", s))
	}
	return ss.tx
}

// wrap converts an engine error into the store taxonomy.
func (st *Store) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case st.dialect.IsUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey):
		err = fmt.Errorf("%w: %w", store.ErrConflict, err)
	}
	return store.Wrap(op, err)
}

func (st *Store) Accounts(s store.Session) store.AccountRepository {
	return accountRepo{st: st, tx: st.txOf(s)}
}

func (st *Store) Headings(s store.Session) store.HeadingRepository {
	return headingRepo{st: st, tx: st.txOf(s)}
}

func (st *Store) Periods(s store.Session) store.PeriodRepository {
	return periodRepo{st: st, tx: st.txOf(s)}
}

func (st *Store) DocumentTypes(s store.Session) store.DocumentTypeRepository {
	return documentTypeRepo{st: st, tx: st.txOf(s)}
}

func (st *Store) Documents(s store.Session) store.DocumentRepository {
	return documentRepo{st: st, tx: st.txOf(s)}
}

func (st *Store) Entries(s store.Session) store.EntryRepository {
	return entryRepo{st: st, tx: st.txOf(s)}
}

func (st *Store) EntryTemplates(s store.Session) store.EntryTemplateRepository {
	return entryTemplateRepo{st: st, tx: st.txOf(s)}
}

func (st *Store) Attachments(s store.Session) store.AttachmentRepository {
	return attachmentRepo{st: st, tx: st.txOf(s)}
}
