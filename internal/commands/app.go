package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/priku/tilitin/internal/accounts"
	"github.com/priku/tilitin/internal/attachment"
	"github.com/priku/tilitin/internal/config"
	"github.com/priku/tilitin/internal/dispatch"
	"github.com/priku/tilitin/internal/journal"
	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
)

// app is the wiring for one command invocation. The command's goroutine is
// the interaction thread: results are delivered to it through loop.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	st    store.Store
	loop  *dispatch.Loop
	d     *dispatch.Dispatcher
	chart *accounts.Service
	jrnl  *journal.Service
}

func newLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return log, nil
}

func openApp(cmd *cobra.Command, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return openAppWith(cmd, cfg)
}

func openAppWith(cmd *cobra.Command, cfg *config.Config) (*app, error) {
	log, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Database.URL, cfg.Database.User, cfg.Database.Password, store.Options{
		Logger:      log,
		MaxSessions: cfg.Dispatch.StoreWorkers,
		SkipMigrate: !cfg.Database.AutoMigrate,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Database.URL, err)
	}

	a := &app{cfg: cfg, log: log, st: st, loop: dispatch.NewLoop()}
	a.d = dispatch.New(st, dispatch.Options{
		StoreWorkers:      cfg.Dispatch.StoreWorkers,
		BackgroundWorkers: cfg.Dispatch.BackgroundWorkers,
		Interactor:        a.loop,
		Logger:            log,
	})
	return a, nil
}

// services loads the chart of accounts and builds the journal service.
func (a *app) services(ctx context.Context) error {
	chart, err := accounts.Load(ctx, a.d)
	if err != nil {
		return err
	}
	a.chart = chart
	a.jrnl = journal.NewService(a.d, chart, attachment.NewInspector(a.log))
	return nil
}

func (a *app) Close() {
	a.loop.Stop()
	a.d.Shutdown()
	if err := a.st.Close(); err != nil {
		a.log.WithError(err).Warn("closing store")
	}
}

// show runs the interaction loop on the calling goroutine until f's result
// has been handed to fn.
func show[T any](a *app, f *dispatch.Future[T], fn func(T) error) error {
	var err error
	f.Deliver(a.d, func(v T, ferr error) {
		if ferr == nil {
			ferr = fn(v)
		}
		err = ferr
		a.loop.Stop()
	})
	a.loop.Run()
	return err
}

// account resolves an account number from the command line.
func (a *app) account(number string) (model.Account, error) {
	acct, ok := a.chart.ByNumber(number)
	if !ok {
		return acct, fmt.Errorf("unknown account %s", number)
	}
	return acct, nil
}

// documentType finds a document type by its sequence number.
func (a *app) documentType(ctx context.Context, number int) (model.DocumentType, error) {
	types, err := dispatch.RunOnStore(a.d, func(_ context.Context, st store.Store, s store.Session) ([]model.DocumentType, error) {
		return st.DocumentTypes(s).GetAll()
	}).Await(ctx)
	if err != nil {
		return model.DocumentType{}, err
	}
	for _, t := range types {
		if t.Number == number {
			return t, nil
		}
	}
	return model.DocumentType{}, fmt.Errorf("unknown document type %d", number)
}
