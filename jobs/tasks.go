package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeRollupWarm is the task type for precomputing the profit rollup.
	TaskTypeRollupWarm = "rollup:warm"
)

// RollupWarmPayload describes a rollup warmup request.
type RollupWarmPayload struct {
	Reason string `json:"reason"`
}

// NewRollupWarmTask constructs an Asynq task.
func NewRollupWarmTask(payload RollupWarmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRollupWarm, data), nil
}
