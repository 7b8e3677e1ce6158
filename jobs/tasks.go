package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskConsistencyScan re-validates recent scheduling records against
	// the current rule set.
	TaskConsistencyScan = "consistency:scan"
)

// ConsistencyScanPayload bounds the scan window.
type ConsistencyScanPayload struct {
	LookbackDays int `json:"lookback_days"`
}

// NewConsistencyScanTask constructs an Asynq task.
func NewConsistencyScanTask(payload ConsistencyScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConsistencyScan, data), nil
}
