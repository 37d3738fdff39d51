package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Worker interface {
	Name() string
	Schedule() string
	Ready(now time.Time) bool
	Execute(ctx context.Context)
}

type Orchestrator struct {
	workers []Worker
	logger  *zap.Logger
}

func NewOrchestrator(logger *zap.Logger, workers ...Worker) *Orchestrator {
	return &Orchestrator{workers: workers, logger: logger}
}

// Start registers every worker and starts the cron loop. Ticks that find a
// worker not ready are skipped. ctx is handed to each execution; stop the
// returned cron to end scheduling.
func (o *Orchestrator) Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()

	for _, worker := range o.workers {
		worker := worker
		_, err := c.AddFunc(worker.Schedule(), func() {
			if !worker.Ready(time.Now()) {
				o.logger.Info("worker busy, skipping tick", zap.String("worker", worker.Name()))
				return
			}
			go worker.Execute(ctx)
		})
		if err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", worker.Name(), worker.Schedule(), err)
		}
		o.logger.Info("worker scheduled", zap.String("worker", worker.Name()), zap.String("schedule", worker.Schedule()))
	}

	c.Start()
	return c, nil
}
