package cli

import (
	"fmt"

	"dailyledger/services"

	"github.com/spf13/cobra"
)

func hashPassphraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-passphrase <passphrase>",
		Short: "Print the bcrypt hash to put in LEDGER_PASSPHRASE_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := services.HashPassphrase(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return err
		},
	}
}
