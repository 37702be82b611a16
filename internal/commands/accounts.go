package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/priku/tilitin/internal/accounts"
	"github.com/priku/tilitin/internal/dispatch"
	"github.com/priku/tilitin/internal/model"
)

func newAccountsCommand(cfgPath *string) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Show the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			var filter *model.AccountType
			if typeName != "" {
				t, err := model.ParseAccountType(typeName)
				if err != nil {
					return err
				}
				filter = &t
			}

			f := dispatch.RunOnBackground(a.d, func(ctx context.Context) (*accounts.Service, error) {
				return accounts.Load(ctx, a.d)
			})
			return show(a, f, func(chart *accounts.Service) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				if filter != nil {
					for _, acct := range chart.ByType(*filter) {
						printAccount(w, acct)
					}
					return w.Flush()
				}
				for _, row := range chart.Chart() {
					if row.Heading != nil {
						fmt.Fprintf(w, "%s%s\t\t\n", strings.Repeat("  ", row.Heading.Level), row.Heading.Text)
						continue
					}
					printAccount(w, *row.Account)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "only accounts of this type (asset, liability, equity, revenue, expense, prior-profit, current-profit)")
	return cmd
}

func printAccount(w *tabwriter.Writer, a model.Account) {
	vat := ""
	if a.HasVat() {
		vat = "VAT " + a.VatRate.String() + "%"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Number, a.Name, a.Type, vat)
}
