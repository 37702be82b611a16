package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/priku/tilitin/internal/dispatch"
	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
)

func newTemplateCommand(cfgPath *string) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Entry templates",
	}
	templateCmd.AddCommand(newTemplateListCommand(cfgPath), newTemplateAddCommand(cfgPath))
	return templateCmd
}

func newTemplateListCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entry templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.services(cmd.Context()); err != nil {
				return err
			}

			f := dispatch.RunOnStore(a.d, func(_ context.Context, st store.Store, s store.Session) ([]model.EntryTemplate, error) {
				return st.EntryTemplates(s).GetAll()
			})
			return show(a, f, func(rows []model.EntryTemplate) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, r := range rows {
					acct, _ := a.chart.Get(r.AccountID)
					side := "credit"
					if r.Debit {
						side = "debit"
					}
					amount := ""
					if r.Amount.Valid {
						amount = r.Amount.Decimal.StringFixed(2)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Number, r.Name, acct.Number, side, amount)
				}
				return w.Flush()
			})
		},
	}
}

func newTemplateAddCommand(cfgPath *string) *cobra.Command {
	var number int
	var name, debit, credit, amount string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a two-row entry template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var amt decimal.NullDecimal
			if amount != "" {
				v, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("--amount: %w", err)
				}
				amt = decimal.NewNullDecimal(v)
			}

			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.services(cmd.Context()); err != nil {
				return err
			}
			debitAcct, err := a.account(debit)
			if err != nil {
				return err
			}
			creditAcct, err := a.account(credit)
			if err != nil {
				return err
			}

			rows := []model.EntryTemplate{
				{Number: number, Name: name, AccountID: debitAcct.ID, Debit: true, Amount: amt, Description: name, RowNumber: 0},
				{Number: number, Name: name, AccountID: creditAcct.ID, Amount: amt, Description: name, RowNumber: 1},
			}
			_, err = dispatch.RunOnStore(a.d, func(_ context.Context, st store.Store, s store.Session) (struct{}, error) {
				for i := range rows {
					if err := st.EntryTemplates(s).Save(&rows[i]); err != nil {
						return struct{}{}, fmt.Errorf("saving template row: %w", err)
					}
				}
				return struct{}{}, nil
			}).Await(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added template %d\n", number)
			return nil
		},
	}

	cmd.Flags().IntVar(&number, "number", 0, "template number")
	cmd.Flags().StringVar(&name, "name", "", "template name")
	cmd.Flags().StringVar(&debit, "debit", "", "debit account number")
	cmd.Flags().StringVar(&credit, "credit", "", "credit account number")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, empty to fill in later")
	for _, f := range []string{"number", "name", "debit", "credit"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
