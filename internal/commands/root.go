package commands

import (
	"github.com/spf13/cobra"

	"github.com/priku/tilitin/internal/buildinfo"
	"github.com/priku/tilitin/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// Store engines are made available by the binary importing their packages.
func NewRootCommand() *cobra.Command {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:     "tilitin",
		Short:   "Double-entry bookkeeping ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.FileName, "config file")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(&cfgPath),
		newPeriodCommand(&cfgPath),
		newDocCommand(&cfgPath),
		newAttachCommand(&cfgPath),
		newBalancesCommand(&cfgPath),
		newTemplateCommand(&cfgPath),
	)

	return rootCmd
}
