package scheduler

import (
	"fmt"
	"time"

	"bighome_hub/platform/config"
	"bighome_hub/platform/logger"

	"github.com/hibiken/asynq"
)

// NewPeriodicScheduler builds the asynq scheduler that fires cron-driven
// tasks. Cron expressions are read in loc.
func NewPeriodicScheduler(cfg config.SchedulerConfig, loc *time.Location, log *logger.Logger) (*asynq.Scheduler, error) {
	opt, err := clientOpt(cfg)
	if err != nil {
		return nil, err
	}

	return asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: loc,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Warn("periodic task enqueue failed", "error", err)
				return
			}
			log.Debug("periodic task enqueued", "task", info.Type, "id", info.ID)
		},
	}), nil
}

// PeriodicRegistrar is the part of asynq.Scheduler used to register entries.
type PeriodicRegistrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

// RegisterPeriodic adds the aging sweep to s on the configured cron.
func RegisterPeriodic(s PeriodicRegistrar, cfg config.SchedulerConfig) (string, error) {
	spec := cfg.GetAgingSweepCron()
	if spec == "" {
		return "", fmt.Errorf("aging sweep cron not configured")
	}

	task, err := NewAgingSweepTask(AgingSweepPayload{Trigger: TriggerCron})
	if err != nil {
		return "", err
	}

	entryID, err := s.Register(spec, task, sweepTaskOptions(queueName(cfg))...)
	if err != nil {
		return "", fmt.Errorf("register aging sweep %q: %w", spec, err)
	}
	return entryID, nil
}
