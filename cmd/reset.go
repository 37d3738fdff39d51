package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace all stored state with fresh fixtures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeStore, err := openLedger(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := l.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reset %d trips, %d drivers, %d assets, %d trailers\n",
			len(l.Trips()), len(l.Drivers()), len(l.Assets()), len(l.Trailers()))
		return nil
	},
}
