package events

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

// Sink persists the events worth keeping.
type Sink interface {
	SavePrediction(ctx context.Context, rec *models.PredictionRecord) error
	SaveTrainingRun(ctx context.Context, run *models.TrainingRun) error
}

// EventLogger logs every event it receives and forwards predictions and
// training runs to the sink, when one is configured.
type EventLogger struct {
	sink      Sink
	eventChan <-chan *models.Event
	log       logrus.FieldLogger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewEventLogger(sink Sink, eventChan <-chan *models.Event, log logrus.FieldLogger) *EventLogger {
	if log == nil {
		log = logger.Get()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		sink:      sink,
		eventChan: eventChan,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (l *EventLogger) Start() {
	l.wg.Add(1)
	go l.run()
}

// Stop returns once the goroutine has exited.
func (l *EventLogger) Stop() {
	l.cancel()
	l.wg.Wait()
}

func (l *EventLogger) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	l.logEvent(event)
	if l.sink != nil {
		l.persist(event)
	}
}

func (l *EventLogger) logEvent(event *models.Event) {
	fields := logrus.Fields{"event_type": event.Type, "severity": event.Severity}
	if event.Subject != "" {
		fields["subject"] = event.Subject
	}
	if event.TraceID != "" {
		fields["trace_id"] = event.TraceID
	}
	entry := l.log.WithFields(fields)

	if event.Severity == models.SeverityCritical {
		entry.Error(event.Message)
		return
	}
	if event.Severity == models.SeverityWarning {
		entry.Warn(event.Message)
		return
	}
	entry.Info(event.Message)
}

// persist stores completed predictions and every finished training run.
// Payloads of an unexpected type are skipped.
func (l *EventLogger) persist(event *models.Event) {
	var err error
	what := ""
	switch data := event.Data.(type) {
	case *models.PredictionResult:
		if event.Type != models.EventTypePredictionCompleted {
			return
		}
		what = "prediction"
		err = l.sink.SavePrediction(l.ctx, models.NewPredictionRecord(data, event.TraceID))
	case *models.TrainingRun:
		if event.Type != models.EventTypeTrainingCompleted && event.Type != models.EventTypeTrainingFailed {
			return
		}
		what = "training run"
		err = l.sink.SaveTrainingRun(l.ctx, data)
	default:
		return
	}
	if err != nil {
		l.log.WithField("event_id", event.ID).Errorf("Failed to persist %s: %v", what, err)
	}
}
