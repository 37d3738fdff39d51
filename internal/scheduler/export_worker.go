package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/models"
	"github.com/chrisdamba/fleetops/internal/output"
)

type Snapshotter interface {
	Snapshot() models.Fleet
}

type Exporter interface {
	Export(ctx context.Context, f models.Fleet, at time.Time) (output.Result, error)
}

// ExportWorker writes a snapshot of the ledger on every tick.
type ExportWorker struct {
	schedule string
	source   Snapshotter
	exporter Exporter
	logger   *zap.Logger
	now      func() time.Time
	busy     atomic.Bool
}

func NewExportWorker(schedule string, source Snapshotter, exporter Exporter, logger *zap.Logger) *ExportWorker {
	return &ExportWorker{
		schedule: schedule,
		source:   source,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

func (w *ExportWorker) Name() string     { return "export" }
func (w *ExportWorker) Schedule() string { return w.schedule }

func (w *ExportWorker) Ready(time.Time) bool {
	return !w.busy.Load()
}

func (w *ExportWorker) Execute(ctx context.Context) {
	if !w.busy.CompareAndSwap(false, true) {
		return
	}
	defer w.busy.Store(false)

	at := w.now().UTC()
	w.logger.Info("starting scheduled export", zap.Time("snapshot_at", at))

	res, err := w.exporter.Export(ctx, w.source.Snapshot(), at)
	if err != nil {
		w.logger.Error("scheduled export failed", zap.Error(err))
		return
	}
	w.logger.Info("scheduled export completed",
		zap.Int("trips", res.Rows[output.TableTrips]),
		zap.Int("exceptions", res.Rows[output.TableExceptions]),
	)
}
