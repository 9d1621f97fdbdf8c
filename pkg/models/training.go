package models

import "time"

type TrainingStatus string

const (
	TrainingSucceeded TrainingStatus = "succeeded"
	TrainingFailed    TrainingStatus = "failed"
)

// TrainingRun is a persisted record of one Trainer execution.
type TrainingRun struct {
	ID         int            `json:"id,omitempty"`
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Status     TrainingStatus `json:"status"`
	FailedAt   string         `json:"failed_stage,omitempty"`
	Error      string         `json:"error,omitempty"`
	RawRows    int            `json:"raw_rows"`
	CleanRows  int            `json:"clean_rows"`
	Metrics    *ModelMetrics  `json:"metrics,omitempty"`
}

func (r *TrainingRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
