package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/priku/tilitin/internal/journal"
	"github.com/priku/tilitin/internal/model"
)

func newDocCommand(cfgPath *string) *cobra.Command {
	docCmd := &cobra.Command{
		Use:   "doc",
		Short: "Documents and their entries",
	}
	docCmd.AddCommand(
		newDocAddCommand(cfgPath),
		newDocTemplateCommand(cfgPath),
		newDocShowCommand(cfgPath),
		newDocDeleteCommand(cfgPath),
	)
	return docCmd
}

func newDocAddCommand(cfgPath *string) *cobra.Command {
	var date, debit, credit, amount, description string
	var docType int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a document with one debit and one credit entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := model.ParseDate(date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
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

			debitAcct, err := a.account(debit)
			if err != nil {
				return err
			}
			creditAcct, err := a.account(credit)
			if err != nil {
				return err
			}
			t, err := a.documentType(ctx, docType)
			if err != nil {
				return err
			}

			doc, err := a.jrnl.AddDouble(ctx, journal.AddDoubleParams{
				Date:          d,
				Description:   description,
				DebitAccount:  debitAcct.ID,
				CreditAccount: creditAcct.ID,
				Amount:        amt,
				NumberStart:   t.NumberStart,
				NumberEnd:     t.NumberEnd,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded document %d in period %d\n", doc.Number, doc.PeriodID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "document date, YYYY-MM-DD")
	cmd.Flags().StringVar(&debit, "debit", "", "debit account number")
	cmd.Flags().StringVar(&credit, "credit", "", "credit account number")
	cmd.Flags().StringVar(&amount, "amount", "", "amount")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	cmd.Flags().IntVar(&docType, "type", 1, "document type number")
	for _, f := range []string{"date", "debit", "credit", "amount"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newDocTemplateCommand(cfgPath *string) *cobra.Command {
	var date string
	var template, docType int

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Record a document from an entry template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := model.ParseDate(date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
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
			t, err := a.documentType(ctx, docType)
			if err != nil {
				return err
			}

			doc, entries, err := a.jrnl.FromTemplate(ctx, d, template, t.NumberStart, t.NumberEnd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded document %d with %d entries\n", doc.Number, len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "document date, YYYY-MM-DD")
	cmd.Flags().IntVar(&template, "template", 0, "entry template number")
	cmd.Flags().IntVar(&docType, "type", 1, "document type number")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newDocShowCommand(cfgPath *string) *cobra.Command {
	var periodID int

	cmd := &cobra.Command{
		Use:   "show <number>",
		Short: "Show a document with its entries and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("document number: %w", err)
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

			v, err := a.jrnl.Document(ctx, periodID, number)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Document %d  %s\n", v.Document.Number, model.FormatDate(v.Document.Date))
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
			for _, e := range v.Entries {
				acct, _ := a.chart.Get(e.AccountID)
				var dr, cr string
				if e.Amount.Valid {
					if e.Debit {
						dr = e.Amount.Decimal.StringFixed(2)
					} else {
						cr = e.Amount.Decimal.StringFixed(2)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", acct.Number, dr, cr, e.Description)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if _, _, err := journal.CheckBalanced(v.Entries); err != nil {
				fmt.Fprintf(out, "warning: %v\n", err)
			}
			for _, att := range v.Attachments {
				pages := "?"
				if att.PageCount != nil {
					pages = strconv.Itoa(*att.PageCount)
				}
				fmt.Fprintf(out, "attachment %d: %s (%d bytes, %s pages)\n", att.ID, att.Filename, att.FileSize, pages)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&periodID, "period", 1, "period id")
	return cmd
}

func newDocDeleteCommand(cfgPath *string) *cobra.Command {
	var periodID int

	cmd := &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete a document with its entries and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("document number: %w", err)
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

			v, err := a.jrnl.Document(ctx, periodID, number)
			if err != nil {
				return err
			}
			if err := a.jrnl.DeleteDocument(ctx, v.Document.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %d\n", number)
			return nil
		},
	}

	cmd.Flags().IntVar(&periodID, "period", 1, "period id")
	return cmd
}
