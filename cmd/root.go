package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/logging"
	"github.com/chrisdamba/fleetops/internal/models"
)

var (
	cfgFile string
	cfg     *models.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fleetops",
	Short: "Dispatch ledger for a trucking fleet",
	Long: `fleetops keeps the authoritative record of trips, drivers, tractors and trailers
for a trucking fleet. It assigns resources to trips, records exceptions, and serves
the dispatch board over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = models.LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		logger, err = logging.NewLogger(*cfg)
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./fleetops.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store", "file", "Snapshot store backend (memory, file, redis, postgres)")
	rootCmd.PersistentFlags().String("data-dir", "data", "Directory for the file store")

	cobra.CheckErr(viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store")))
	cobra.CheckErr(viper.BindPFlag("store.directory", rootCmd.PersistentFlags().Lookup("data-dir")))

	rootCmd.AddCommand(serveCmd, tripsCmd, assignCmd, exceptionCmd, kpisCmd, exportCmd, resetCmd, generateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
