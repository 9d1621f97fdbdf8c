package models

import (
	"time"

	"github.com/google/uuid"
)

// NewUUID identifies events and training runs.
func NewUUID() string {
	return uuid.NewString()
}

// EventType names something that happened inside the valuator. Prediction
// events use the district as their subject, training events the run id.
type EventType string

const (
	EventTypePredictionCompleted EventType = "prediction_completed"
	EventTypePredictionRejected  EventType = "prediction_rejected"
	EventTypePredictionFailed    EventType = "prediction_failed"

	EventTypeStageCompleted    EventType = "training_stage_completed"
	EventTypeTrainingCompleted EventType = "training_completed"
	EventTypeTrainingFailed    EventType = "training_failed"

	EventTypeArtifactsLoaded EventType = "artifacts_loaded"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Severity  EventSeverity `json:"severity"`
	Subject   string        `json:"subject,omitempty"`
	Message   string        `json:"message"`
	TraceID   string        `json:"trace_id,omitempty"`
	Data      interface{}   `json:"data,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewEvent stamps an info-level event with a fresh id and the current time.
// The With* setters chain on the returned pointer.
func NewEvent(t EventType, subject, message string) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      t,
		Severity:  SeverityInfo,
		Subject:   subject,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func (e *Event) WithSeverity(s EventSeverity) *Event {
	e.Severity = s
	return e
}

func (e *Event) WithData(v interface{}) *Event {
	e.Data = v
	return e
}

func (e *Event) WithTraceID(id string) *Event {
	e.TraceID = id
	return e
}
