package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/priku/tilitin/internal/attachment"
	"github.com/priku/tilitin/internal/dispatch"
	"github.com/priku/tilitin/internal/model"
	"github.com/priku/tilitin/internal/store"
)

func newAttachCommand(cfgPath *string) *cobra.Command {
	attachCmd := &cobra.Command{
		Use:   "attach",
		Short: "Document attachments",
	}
	attachCmd.AddCommand(newAttachAddCommand(cfgPath), newAttachExportCommand(cfgPath))
	return attachCmd
}

func newAttachAddCommand(cfgPath *string) *cobra.Command {
	var periodID int
	var description string

	cmd := &cobra.Command{
		Use:   "add <document-number> <file.pdf>",
		Short: "Attach a PDF to a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("document number: %w", err)
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[1], err)
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
			att, err := a.jrnl.Attach(ctx, v.Document.ID, filepath.Base(args[1]), data, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Attached %s as attachment %d\n", att.Filename, att.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&periodID, "period", 1, "period id")
	cmd.Flags().StringVar(&description, "description", "", "attachment description")
	return cmd
}

func newAttachExportCommand(cfgPath *string) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <attachment-id>",
		Short: "Write an attachment to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("attachment id: %w", err)
			}

			a, err := openApp(cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			att, err := dispatch.RunOnStore(a.d, func(_ context.Context, st store.Store, s store.Session) (model.Attachment, error) {
				return st.Attachments(s).GetByID(id)
			}).Await(cmd.Context())
			if err != nil {
				return fmt.Errorf("attachment %d: %w", id, err)
			}
			path, err := attachment.Export(outDir, att)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	return cmd
}
