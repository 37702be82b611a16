// Package postgres registers the PostgreSQL engine under the "postgresql:"
// prefix. Connection strings look like "postgresql://host:5432/ledger"; the
// user and password passed to Open override any given in the URL.
package postgres

import (
	"errors"
	"net/url"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/priku/tilitin/internal/store"
	"github.com/priku/tilitin/internal/store/gormstore"
)

// Prefix is the connection-string prefix of this engine.
const Prefix = "postgresql:"

func init() {
	store.Register(Prefix, func(opts store.Options) store.Store {
		return gormstore.New(dialect{}, opts)
	})
}

type dialect struct{}

func (dialect) Name() string { return "postgresql" }

func (dialect) Dialector(connURL, user, password string) (gorm.Dialector, error) {
	u, err := url.Parse(connURL)
	if err != nil {
		return nil, store.ConfigurationError{URL: connURL, Reason: err.Error()}
	}
	if u.Host == "" || len(u.Path) < 2 {
		return nil, store.ConfigurationError{URL: connURL, Reason: "expected postgresql://host[:port]/database"}
	}
	if user != "" {
		u.User = url.UserPassword(user, password)
	}
	u.Scheme = "postgres"
	return postgres.Open(u.String()), nil
}

func (dialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (dialect) RowLocking() bool { return true }
