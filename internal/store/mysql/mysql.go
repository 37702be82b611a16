// Package mysql registers the MySQL/MariaDB engine under the "mysql:"
// prefix. Connection strings look like "mysql://host:3306/ledger".
package mysql

import (
	"errors"
	"net/url"
	"strings"
	"time"

	drv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/priku/tilitin/internal/store"
	"github.com/priku/tilitin/internal/store/gormstore"
)

// Prefix is the connection-string prefix of this engine.
const Prefix = "mysql:"

const errDupEntry = 1062

func init() {
	store.Register(Prefix, func(opts store.Options) store.Store {
		return gormstore.New(dialect{}, opts)
	})
}

type dialect struct{}

func (dialect) Name() string { return "mysql" }

func (dialect) Dialector(connURL, user, password string) (gorm.Dialector, error) {
	u, err := url.Parse(connURL)
	if err != nil {
		return nil, store.ConfigurationError{URL: connURL, Reason: err.Error()}
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || dbName == "" {
		return nil, store.ConfigurationError{URL: connURL, Reason: "expected mysql://host[:port]/database"}
	}

	cfg := drv.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = dbName
	cfg.User = user
	cfg.Passwd = password
	if user == "" && u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// Updates report matched rather than changed rows, so saving an
	// unchanged entity is not mistaken for a missing one.
	cfg.ClientFoundRows = true
	return mysql.Open(cfg.FormatDSN()), nil
}

func (dialect) IsUniqueViolation(err error) bool {
	var myErr *drv.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDupEntry
}

func (dialect) RowLocking() bool { return true }
