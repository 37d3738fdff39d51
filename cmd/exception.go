package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/fleetops/internal/models"
)

var exceptionCmd = &cobra.Command{
	Use:   "exception TRIP",
	Short: "Report an exception on a trip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")
		severity, _ := cmd.Flags().GetString("severity")
		description, _ := cmd.Flags().GetString("description")

		l, closeStore, err := openLedger(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer closeStore()

		exc, err := l.ReportException(cmd.Context(), args[0],
			models.ExceptionType(kind), models.Severity(severity), description)
		if err != nil {
			return err
		}
		trip, err := l.Trip(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s recorded on %s (%s severity); on-time risk is now %s\n",
			exc.Type.Label(), trip.OrderRef, exc.Severity, trip.OnTimeRisk)
		return nil
	},
}

func init() {
	exceptionCmd.Flags().String("type", string(models.ExceptionDelay), "Exception type")
	exceptionCmd.Flags().String("severity", string(models.SeverityMedium), "Severity: low, medium or high")
	exceptionCmd.Flags().String("description", "", "What happened")
}
