package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "Show fleet KPIs against their targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeStore, err := openLedger(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer closeStore()

		k := l.KPIs()
		ok := k.OnTarget()
		mark := func(key string) string {
			if ok[key] {
				return "on target"
			}
			return "off target"
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "On-time delivery\t%.1f%%\t%s\n", k.OnTimeDeliveryRate, mark("on_time_delivery_rate"))
		fmt.Fprintf(tw, "Avg dwell time\t%.0f min\t%s\n", k.AvgDwellTime, mark("avg_dwell_time"))
		fmt.Fprintf(tw, "Trailer utilization\t%.1f%%\t%s\n", k.TrailerUtilization, mark("trailer_utilization"))
		fmt.Fprintf(tw, "Empty miles\t%.1f%%\t%s\n", k.EmptyMilesPercent, mark("empty_miles_percent"))
		fmt.Fprintf(tw, "Active trips\t%d\t\n", k.ActiveTrips)
		fmt.Fprintf(tw, "Available drivers\t%d\t\n", k.AvailableDrivers)
		fmt.Fprintf(tw, "Available assets\t%d\t\n", k.AvailableAssets)
		return tw.Flush()
	},
}
