package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/api"
	"github.com/chrisdamba/fleetops/internal/output"
	"github.com/chrisdamba/fleetops/internal/producers"
	"github.com/chrisdamba/fleetops/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dispatch board API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		l, closeStore, err := openLedger(ctx, nil)
		if err != nil {
			return err
		}
		defer closeStore()

		if cfg.Kafka.Enabled {
			pub, err := producers.NewSaramaProducer(cfg.Kafka, logger.Named("kafka"))
			if err != nil {
				return err
			}
			defer pub.Close()
			defer producers.Forward(l, pub, cfg.Kafka.Topic, logger.Named("events"))()
		} else if viper.GetBool("serve.echo_events") {
			defer producers.Forward(l, producers.NewConsoleOutput(cmd.OutOrStdout()), cfg.Kafka.Topic, logger.Named("events"))()
		}

		if cfg.Export.Schedule != "" {
			exporter, err := output.NewExporter(ctx, cfg.Export, logger.Named("export"))
			if err != nil {
				return err
			}
			worker := scheduler.NewExportWorker(cfg.Export.Schedule, l, exporter, logger.Named("export"))
			c, err := scheduler.NewOrchestrator(logger.Named("scheduler"), worker).Start(ctx)
			if err != nil {
				return err
			}
			defer func() { <-c.Stop().Done() }()
		}

		if cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              cfg.ServerAddr,
			Handler:           api.NewRouter(api.NewHandler(l, logger.Named("http"))),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Bool("echo-events", false, "Print ledger events to stdout when Kafka is disabled")
	cobra.CheckErr(viper.BindPFlag("server_addr", serveCmd.Flags().Lookup("addr")))
	cobra.CheckErr(viper.BindPFlag("serve.echo_events", serveCmd.Flags().Lookup("echo-events")))
}
