package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/cloudwriter"
	"github.com/chrisdamba/fleetops/internal/models"
)

// Result lists where each table was written and how many rows it holds.
type Result struct {
	SnapshotAt time.Time
	Files      map[string]string
	Rows       map[string]int
}

type Exporter struct {
	cfg      models.ExportConfig
	factory  cloudwriter.CloudWriterFactory
	logger   *zap.Logger
	progress io.Writer
}

type ExporterOption func(*Exporter)

// WithProgress renders a progress bar per table on w.
func WithProgress(w io.Writer) ExporterOption {
	return func(e *Exporter) { e.progress = w }
}

// WithCloudWriterFactory overrides the factory used for cloud destinations.
func WithCloudWriterFactory(f cloudwriter.CloudWriterFactory) ExporterOption {
	return func(e *Exporter) { e.factory = f }
}

func NewExporter(ctx context.Context, cfg models.ExportConfig, logger *zap.Logger, opts ...ExporterOption) (*Exporter, error) {
	e := &Exporter{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.Destination != "local" && e.factory == nil {
		switch cfg.CloudStorage.Provider {
		case "s3":
			factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region)
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			e.factory = factory
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
		}
	}
	return e, nil
}

// Export writes the trips and exceptions tables of a fleet snapshot, each to
// its own snapshot-partitioned file.
func (e *Exporter) Export(ctx context.Context, f models.Fleet, at time.Time) (Result, error) {
	trips, excs := Flatten(f, at.Unix())
	res := Result{
		SnapshotAt: at,
		Files:      make(map[string]string, 2),
		Rows:       map[string]int{TableTrips: len(trips), TableExceptions: len(excs)},
	}

	tables := []struct {
		name string
		rows []any
	}{
		{TableTrips, toAny(trips)},
		{TableExceptions, toAny(excs)},
	}
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		where, err := e.writeTable(ctx, t.name, t.rows, at)
		if err != nil {
			return res, fmt.Errorf("export %s: %w", t.name, err)
		}
		res.Files[t.name] = where
		e.logger.Info("exported table",
			zap.String("table", t.name),
			zap.Int("rows", len(t.rows)),
			zap.String("destination", where),
		)
	}
	return res, nil
}

func (e *Exporter) writeTable(ctx context.Context, table string, rows []any, at time.Time) (string, error) {
	ext := e.cfg.Format
	partition := "snapshot=" + at.UTC().Format("20060102T150405Z")
	name := "data." + ext

	var (
		file  source.ParquetFile
		where string
		err   error
	)
	if e.factory != nil {
		where = path.Join(e.cfg.OutputFolder, table, partition, name)
		cw, err := e.factory.NewWriter(ctx, e.cfg.CloudStorage.BucketName, where)
		if err != nil {
			return "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		file = cloudwriter.NewParquetFile(cw)
		where = "s3://" + path.Join(e.cfg.CloudStorage.BucketName, where)
	} else {
		dir := filepath.Join(e.cfg.OutputPath, e.cfg.OutputFolder, table, partition)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", err
		}
		where = filepath.Join(dir, name)
		file, err = local.NewLocalFileWriter(where)
		if err != nil {
			return "", fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	bar := e.newBar(table, len(rows))
	switch e.cfg.Format {
	case "parquet":
		err = writeParquet(file, table, rows, bar)
	default:
		err = writeJSON(file, rows, bar)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return where, err
}

func (e *Exporter) newBar(table string, n int) *progressbar.ProgressBar {
	if e.progress == nil {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionSetDescription("exporting "+table),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func writeParquet(file source.ParquetFile, table string, rows []any, bar *progressbar.ProgressBar) error {
	obj, err := prototype(table)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(file, obj, 4)
	if err != nil {
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// writeJSON writes one JSON document per line.
func writeJSON(w io.Writer, rows []any, bar *progressbar.ProgressBar) error {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return buf.Flush()
}

func toAny[T any](rows []T) []any {
	out := make([]any, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out
}
