package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/factories"
	"github.com/chrisdamba/fleetops/internal/models"
	"github.com/chrisdamba/fleetops/internal/output"
)

type staticSource struct{ fleet models.Fleet }

func (s staticSource) Snapshot() models.Fleet { return s.fleet }

type blockingExporter struct {
	calls   int
	gotAt   time.Time
	release chan struct{}
	started chan struct{}
	err     error
}

func (e *blockingExporter) Export(_ context.Context, f models.Fleet, at time.Time) (output.Result, error) {
	e.calls++
	e.gotAt = at
	if e.started != nil {
		close(e.started)
		<-e.release
	}
	return output.Result{Rows: map[string]int{output.TableTrips: len(f.Trips)}}, e.err
}

func TestExportWorkerExecute(t *testing.T) {
	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	exp := &blockingExporter{}
	w := NewExportWorker("@hourly", staticSource{factories.MockFleet(at)}, exp, zap.NewNop())
	w.now = func() time.Time { return at }

	w.Execute(context.Background())
	if exp.calls != 1 || !exp.gotAt.Equal(at) {
		t.Errorf("Export calls = %d at %v, want 1 at %v", exp.calls, exp.gotAt, at)
	}
	if !w.Ready(at) {
		t.Error("Ready() = false after execute, want true")
	}

	exp.err = errors.New("bucket missing")
	w.Execute(context.Background())
	if !w.Ready(at) {
		t.Error("Ready() = false after failed execute, want true")
	}
}

func TestExportWorkerSkipsWhileBusy(t *testing.T) {
	exp := &blockingExporter{started: make(chan struct{}), release: make(chan struct{})}
	w := NewExportWorker("@hourly", staticSource{}, exp, zap.NewNop())

	done := make(chan struct{})
	go func() {
		w.Execute(context.Background())
		close(done)
	}()
	<-exp.started

	if w.Ready(time.Now()) {
		t.Error("Ready() = true while exporting, want false")
	}
	w.Execute(context.Background()) // returns at once

	close(exp.release)
	<-done
	if exp.calls != 1 {
		t.Errorf("Export calls = %d, want 1", exp.calls)
	}
}

func TestOrchestratorStart(t *testing.T) {
	w := NewExportWorker("*/15 * * * *", staticSource{}, &blockingExporter{}, zap.NewNop())
	c, err := NewOrchestrator(zap.NewNop(), w).Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Stop()

	if n := len(c.Entries()); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
}

func TestOrchestratorRejectsBadSchedule(t *testing.T) {
	w := NewExportWorker("every tuesday", staticSource{}, &blockingExporter{}, zap.NewNop())
	if _, err := NewOrchestrator(zap.NewNop(), w).Start(context.Background()); err == nil {
		t.Error("Start() error = nil, want parse error")
	}
}
