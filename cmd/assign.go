package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assignCmd = &cobra.Command{
	Use:   "assign TRIP DRIVER ASSET TRAILER",
	Short: "Assign a driver, asset and trailer to a trip",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeStore, err := openLedger(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := l.AssignResources(cmd.Context(), args[0], args[1], args[2], args[3]); err != nil {
			return err
		}
		trip, err := l.Trip(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: driver %s, asset %s, trailer %s\n",
			trip.OrderRef, trip.Status.Label(), trip.DriverID, trip.AssetID, trip.TrailerID)
		return nil
	},
}
