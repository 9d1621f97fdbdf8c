package events

import (
	"fmt"
	"time"

	"github.com/OldStager01/housing-valuator/pkg/models"
)

// Publisher builds domain events and hands them to the bus. A nil Publisher
// or one without a bus drops everything, so components may run without events.
type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	if p == nil {
		return nil
	}
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p == nil || p.bus == nil {
		return
	}
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) PredictionCompleted(result *models.PredictionResult) {
	msg := fmt.Sprintf("Prediction completed: %d (%s)", result.PredictedPrice, result.LuxuryCategory)
	event := models.NewEvent(models.EventTypePredictionCompleted, result.Input.District, msg).
		WithData(result)
	p.publish(event)
}

func (p *Publisher) PredictionRejected(input models.PredictionInput, problems []string) {
	event := models.NewEvent(models.EventTypePredictionRejected, input.District, "Prediction request rejected").
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"problems": problems,
		})
	p.publish(event)
}

func (p *Publisher) PredictionFailed(input models.PredictionInput, err error) {
	event := models.NewEvent(models.EventTypePredictionFailed, input.District, "Prediction failed").
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) StageCompleted(runID, stage string, took time.Duration) {
	event := models.NewEvent(models.EventTypeStageCompleted, runID, "Training stage completed: "+stage).
		WithData(map[string]interface{}{
			"stage":       stage,
			"duration_ms": took.Milliseconds(),
		})
	p.publish(event)
}

func (p *Publisher) TrainingCompleted(run *models.TrainingRun) {
	event := models.NewEvent(models.EventTypeTrainingCompleted, run.RunID, "Training completed").
		WithData(run)
	p.publish(event)
}

func (p *Publisher) TrainingFailed(run *models.TrainingRun) {
	event := models.NewEvent(models.EventTypeTrainingFailed, run.RunID, "Training failed at "+run.FailedAt).
		WithSeverity(models.SeverityCritical).
		WithData(run)
	p.publish(event)
}

func (p *Publisher) ArtifactsLoaded(manifest models.TrainingManifest, dir string) {
	event := models.NewEvent(models.EventTypeArtifactsLoaded, manifest.RunID, "Artifacts loaded from "+dir).
		WithData(manifest)
	p.publish(event)
}
