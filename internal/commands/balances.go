package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBalancesCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "balances <period-id>",
		Short: "Show account balances for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			periodID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("period id: %w", err)
			}

			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			if err := a.services(ctx); err != nil {
				return err
			}

			balances, err := a.jrnl.PeriodBalances(ctx, periodID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, acct := range a.chart.All() {
				b, ok := balances[acct.ID]
				if !ok {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", acct.Number, acct.Name, b.StringFixed(2))
			}
			return w.Flush()
		},
	}
}
