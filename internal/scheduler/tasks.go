package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAgingSweep = "leads.aging.sweep"

const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

type AgingSweepPayload struct {
	Trigger string `json:"trigger"`
}

func NewAgingSweepTask(payload AgingSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAgingSweep, data), nil
}

func ParseAgingSweepPayload(task *asynq.Task) (AgingSweepPayload, error) {
	var payload AgingSweepPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AgingSweepPayload{}, err
	}
	return payload, nil
}
