// Package cli is the dailyledger command line.
package cli

import (
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dailyledger",
		Short: "Daily habit ledger",
		Long: `Track a handful of daily tasks, seal each day once and review the
trend and consistency of past days.

Configuration is read from .env, an optional YAML file named by
LEDGER_CONFIG, and the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(hashPassphraseCmd())
	return cmd
}
