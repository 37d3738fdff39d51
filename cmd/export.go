package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chrisdamba/fleetops/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a snapshot of trips and exceptions as JSON or Parquet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeStore, err := openLedger(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer closeStore()

		var opts []output.ExporterOption
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			opts = append(opts, output.WithProgress(os.Stderr))
		}
		exporter, err := output.NewExporter(cmd.Context(), cfg.Export, logger.Named("export"), opts...)
		if err != nil {
			return err
		}

		res, err := exporter.Export(cmd.Context(), l.Snapshot(), time.Now().UTC())
		if err != nil {
			return err
		}
		for _, table := range []string{output.TableTrips, output.TableExceptions} {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows -> %s\n", table, res.Rows[table], res.Files[table])
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "Output format: json or parquet")
	exportCmd.Flags().String("destination", "local", "Where to write: local or cloud")
	exportCmd.Flags().String("output-path", "output", "Base directory for local exports")
	exportCmd.Flags().Bool("quiet", false, "Hide the progress bar")
	cobra.CheckErr(viper.BindPFlag("export.format", exportCmd.Flags().Lookup("format")))
	cobra.CheckErr(viper.BindPFlag("export.destination", exportCmd.Flags().Lookup("destination")))
	cobra.CheckErr(viper.BindPFlag("export.output_path", exportCmd.Flags().Lookup("output-path")))
}
