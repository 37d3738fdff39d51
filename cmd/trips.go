package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/fleetops/internal/ledger"
	"github.com/chrisdamba/fleetops/internal/models"
)

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "List trips with progress and ETA",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, _ := cmd.Flags().GetString("view")

		l, closeStore, err := openLedger(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer closeStore()

		trips := l.Trips()
		switch view {
		case "all":
		case "active":
			trips = ledger.ActiveTrips(trips)
		case "at-risk":
			trips = ledger.AtRiskTrips(trips)
		default:
			return fmt.Errorf("unknown view %q (want all, active or at-risk)", view)
		}

		now := time.Now()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TRIP\tORDER\tSTATUS\tRISK\tDRIVER\tPROGRESS\tETA\tEXCEPTIONS")
		for _, t := range trips {
			driver := "-"
			if d, err := l.Driver(t.DriverID); err == nil {
				driver = d.Name
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d%% of %s\t%s\t%d\n",
				t.ID, t.OrderRef, t.Status.Label(), t.OnTimeRisk, driver,
				ledger.ProgressPercent(t), models.FormatMiles(t.MilesPlanned),
				models.FormatCountdown(t.ETA, now), len(t.Exceptions))
		}
		return tw.Flush()
	},
}

func init() {
	tripsCmd.Flags().String("view", "all", "Which trips to list: all, active or at-risk")
}
