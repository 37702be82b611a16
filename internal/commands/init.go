package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/priku/tilitin/internal/accounts"
	"github.com/priku/tilitin/internal/config"
	"github.com/priku/tilitin/internal/dispatch"
	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
)

func newInitCommand() *cobra.Command {
	var name, form, dbURL string
	var year int

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, form, dbURL, year)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&form, "form", "sole_trader", "business form, selects the default chart of accounts")
	cmd.Flags().StringVar(&dbURL, "db", "", "database connection string (default: sqlite file in the directory)")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "first financial period")

	return cmd
}

// defaultDocumentTypes number documents of each kind in their own range.
func defaultDocumentTypes() []model.DocumentType {
	return []model.DocumentType{
		{Number: 1, Name: "General", NumberStart: 1, NumberEnd: 999},
		{Number: 2, Name: "Sales", NumberStart: 1000, NumberEnd: 1999},
		{Number: 3, Name: "Purchases", NumberStart: 2000, NumberEnd: 2999},
	}
}

func runInit(cmd *cobra.Command, dir, name, form, dbURL string, year int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(name, form)
	cfg.Database.URL = "sqlite:" + filepath.Join(dir, "tilitin.sqlite")
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}

	a, err := openAppWith(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	chart, headings := accounts.DefaultChart(form)
	if err := accounts.Seed(ctx, a.d, chart, headings); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	_, err = dispatch.RunOnStore(a.d, func(_ context.Context, st store.Store, s store.Session) (struct{}, error) {
		p := model.Period{StartDate: model.Date(year, time.January, 1), EndDate: model.Date(year, time.December, 31)}
		if err := st.Periods(s).Save(&p); err != nil {
			return struct{}{}, fmt.Errorf("creating period: %w", err)
		}
		for _, t := range defaultDocumentTypes() {
			if err := st.DocumentTypes(s).Save(&t); err != nil {
				return struct{}{}, fmt.Errorf("creating document type %s: %w", t.Name, err)
			}
		}
		return struct{}{}, nil
	}).Await(ctx)
	if err != nil {
		return err
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger for %s at %s\n", name, dir)
	return nil
}
