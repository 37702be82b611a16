package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/priku/tilitin/internal/dispatch"
	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
)

func newPeriodCommand(cfgPath *string) *cobra.Command {
	periodCmd := &cobra.Command{
		Use:   "period",
		Short: "Financial periods",
	}
	periodCmd.AddCommand(
		newPeriodListCommand(cfgPath),
		newPeriodAddCommand(cfgPath),
		newPeriodLockCommand(cfgPath, true),
		newPeriodLockCommand(cfgPath, false),
	)
	return periodCmd
}

func newPeriodListCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			type row struct {
				period    model.Period
				documents int
			}
			f := dispatch.RunOnStore(a.d, func(_ context.Context, st store.Store, s store.Session) ([]row, error) {
				periods, err := st.Periods(s).GetAll()
				if err != nil {
					return nil, err
				}
				rows := make([]row, len(periods))
				for i, p := range periods {
					n, err := st.Documents(s).CountByPeriodID(p.ID)
					if err != nil {
						return nil, err
					}
					rows[i] = row{p, n}
				}
				return rows, nil
			})
			return show(a, f, func(rows []row) error {
				for _, r := range rows {
					lock := ""
					if r.period.Locked {
						lock = " locked"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s..%s\t%d documents%s\n", r.period.ID,
						model.FormatDate(r.period.StartDate), model.FormatDate(r.period.EndDate), r.documents, lock)
				}
				return nil
			})
		},
	}
}

func newPeriodAddCommand(cfgPath *string) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := model.ParseDate(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			endDate, err := model.ParseDate(end)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := dispatch.RunOnStore(a.d, func(_ context.Context, st store.Store, s store.Session) (model.Period, error) {
				p := model.Period{StartDate: startDate, EndDate: endDate}
				return p, st.Periods(s).Save(&p)
			}).Await(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added period %d\n", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newPeriodLockCommand(cfgPath *string, lock bool) *cobra.Command {
	use, short := "lock <id>", "Lock a period against edits"
	if !lock {
		use, short = "unlock <id>", "Unlock a period"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("period id: %w", err)
			}

			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = dispatch.RunOnStore(a.d, func(_ context.Context, st store.Store, s store.Session) (struct{}, error) {
				p, err := st.Periods(s).GetByID(id)
				if err != nil {
					return struct{}{}, fmt.Errorf("period %d: %w", id, err)
				}
				p.Locked = lock
				return struct{}{}, st.Periods(s).Save(&p)
			}).Await(cmd.Context())
			return err
		},
	}
}
