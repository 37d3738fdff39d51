package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/factories"
	"github.com/chrisdamba/fleetops/internal/ledger"
	"github.com/chrisdamba/fleetops/internal/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random fleet and store it, or print it with --dry-run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fc := cfg.Fixtures
		fc.Source = "generated"
		now := fc.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}

		fleet := factories.NewFleetFactory(fc.Seed).CreateFleet(fc, now)
		for _, v := range multierr.Errors(ledger.Audit(fleet)) {
			logger.Warn("generated fleet violates an invariant", zap.Error(v))
		}

		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fleet)
		}

		l, closeStore, err := openLedger(cmd.Context(), func() models.Fleet { return fleet })
		if err != nil {
			return err
		}
		defer closeStore()

		if err := l.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %d trips, %d drivers, %d assets, %d trailers (seed %d)\n",
			len(fleet.Trips), len(fleet.Drivers), len(fleet.Assets), len(fleet.Trailers), fc.Seed)
		return nil
	},
}

func init() {
	generateCmd.Flags().Int64("seed", 42, "Random seed")
	generateCmd.Flags().Int("drivers", 20, "Number of drivers")
	generateCmd.Flags().Int("assets", 15, "Number of assets")
	generateCmd.Flags().Int("trailers", 15, "Number of trailers")
	generateCmd.Flags().Int("trips", 12, "Number of trips")
	generateCmd.Flags().Bool("dry-run", false, "Print the fleet as JSON instead of storing it")
	for _, name := range []string{"seed", "drivers", "assets", "trailers", "trips"} {
		cobra.CheckErr(viper.BindPFlag("fixtures."+name, generateCmd.Flags().Lookup(name)))
	}
}
