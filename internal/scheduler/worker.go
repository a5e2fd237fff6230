package scheduler

import (
	"context"
	"fmt"

	"bighome_hub/platform/config"
	"bighome_hub/platform/logger"

	"github.com/hibiken/asynq"
)

// Sweep runs one aging sweep.
type Sweep interface {
	Run(ctx context.Context) (SweepStats, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sweep  Sweep
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweep Sweep, log *logger.Logger) (*Worker, error) {
	opt, err := clientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		sweep:  sweep,
		log:    log,
	}
	w.mux = w.newMux()

	return w, nil
}

func (w *Worker) newMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskAgingSweep, w.handleAgingSweep)
	return mux
}

func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	w.log.Info("scheduler worker stopped")
	return nil
}

func (w *Worker) handleAgingSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAgingSweepPayload(task)
	if err != nil {
		return err
	}

	stats, err := w.sweep.Run(ctx)
	if err != nil {
		w.log.Error("aging sweep failed", "trigger", payload.Trigger, "notified", stats.Notified, "error", err)
		return err
	}

	w.log.Debug("aging sweep finished", "trigger", payload.Trigger, "overdue", stats.Overdue)
	return nil
}
