// Package sqlite registers the embedded file engine under the "sqlite:"
// prefix. Import it for side effects:
//
//	import _ "github.com/priku/tilitin/internal/store/sqlite"
//
// Connection strings name a database file, e.g. "sqlite:/home/me/ledger.sqlite".
// User and password are ignored.
package sqlite

import (
	"errors"
	"net/url"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/priku/tilitin/internal/store"
	"github.com/priku/tilitin/internal/store/gormstore"
)

// Prefix is the connection-string prefix of this engine.
const Prefix = "sqlite:"

const busyTimeoutMillis = "10000"

func init() {
	store.Register(Prefix, func(opts store.Options) store.Store {
		return gormstore.New(dialect{}, opts)
	})
}

type dialect struct{}

func (dialect) Name() string { return "sqlite" }

// Dialector builds a DSN whose transactions start with BEGIN IMMEDIATE, so
// write transactions are serialized by the engine and wait on each other
// instead of failing with SQLITE_BUSY.
func (dialect) Dialector(connURL, _, _ string) (gorm.Dialector, error) {
	path := strings.TrimPrefix(connURL, Prefix)
	path = strings.TrimPrefix(path, "//")
	if path == "" {
		return nil, store.ConfigurationError{URL: connURL, Reason: "missing database file"}
	}
	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Set("_busy_timeout", busyTimeoutMillis)
	params.Set("_foreign_keys", "on")
	params.Set("_journal_mode", "WAL")
	return sqlite.Open("file:" + path + "?" + params.Encode()), nil
}

func (dialect) IsUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) &&
		(serr.ExtendedCode == sqlite3.ErrConstraintUnique || serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func (dialect) RowLocking() bool { return false }
