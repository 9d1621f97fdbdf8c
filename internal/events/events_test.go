package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

func TestEventBus_SubscribeAndPublish(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeTrainingCompleted)
	bus.Publish(models.NewEvent(models.EventTypeTrainingCompleted, "run-1", "done"))
	bus.Publish(models.NewEvent(models.EventTypeTrainingFailed, "run-2", "failed"))

	ev := <-ch
	assert.Equal(t, "run-1", ev.Subject)
	assert.Len(t, ch, 0)
}

func TestEventBus_SubscribeAllReceivesEveryType(t *testing.T) {
	bus := NewEventBus(20)
	defer bus.Close()

	ch := bus.SubscribeAll()
	for _, et := range AllEventTypes() {
		bus.Publish(models.NewEvent(et, "s", "m"))
	}

	assert.Len(t, ch, len(AllEventTypes()))
}

func TestEventBus_FullChannelDrops(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeStageCompleted)
	bus.Publish(models.NewEvent(models.EventTypeStageCompleted, "a", ""))
	bus.Publish(models.NewEvent(models.EventTypeStageCompleted, "b", ""))

	assert.Equal(t, "a", (<-ch).Subject)
	assert.Len(t, ch, 0)
	assert.Equal(t, uint64(1), bus.Dropped())
}

func TestEventBus_SubscribeToSeveralTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeTrainingCompleted, models.EventTypeTrainingFailed)
	bus.Publish(models.NewEvent(models.EventTypeTrainingFailed, "run-1", ""))
	bus.Publish(models.NewEvent(models.EventTypePredictionCompleted, "p", ""))
	bus.Publish(models.NewEvent(models.EventTypeTrainingCompleted, "run-2", ""))

	assert.Equal(t, "run-1", (<-ch).Subject)
	assert.Equal(t, "run-2", (<-ch).Subject)
	assert.Len(t, ch, 0)
}

func TestEventBus_SubscribeAfterCloseIsClosed(t *testing.T) {
	bus := NewEventBus(1)
	bus.Close()

	_, ok := <-bus.SubscribeAll()
	assert.False(t, ok)
}

func TestEventBus_CloseIsIdempotentAndStopsPublishing(t *testing.T) {
	bus := NewEventBus(1)
	all := bus.SubscribeAll()
	one := bus.Subscribe(models.EventTypeArtifactsLoaded)

	bus.Close()
	bus.Close()
	bus.Publish(models.NewEvent(models.EventTypeArtifactsLoaded, "x", ""))

	_, ok := <-all
	assert.False(t, ok)
	_, ok = <-one
	assert.False(t, ok)
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() {
		p.WithTraceID("t").TrainingFailed(&models.TrainingRun{RunID: "r"})
		NewPublisher(nil).StageCompleted("r", "load", time.Second)
	})
}

func TestPublisher_TraceIDAndSeverity(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()
	ch := bus.SubscribeAll()

	p := NewPublisher(bus).WithTraceID("trace-9")
	p.PredictionFailed(models.PredictionInput{District: "Buca"}, errors.New("boom"))
	p.TrainingFailed(&models.TrainingRun{RunID: "run-3", FailedAt: "fit"})

	ev := <-ch
	assert.Equal(t, models.EventTypePredictionFailed, ev.Type)
	assert.Equal(t, "trace-9", ev.TraceID)
	assert.Equal(t, models.SeverityCritical, ev.Severity)

	ev = <-ch
	assert.Equal(t, "run-3", ev.Subject)
	assert.Equal(t, "Training failed at fit", ev.Message)
}

type recordingSink struct {
	mu          sync.Mutex
	predictions []*models.PredictionRecord
	runs        []*models.TrainingRun
	done        chan struct{}
}

func (s *recordingSink) SavePrediction(_ context.Context, rec *models.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictions = append(s.predictions, rec)
	s.done <- struct{}{}
	return nil
}

func (s *recordingSink) SaveTrainingRun(_ context.Context, run *models.TrainingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	s.done <- struct{}{}
	return errors.New("db down")
}

func TestEventLogger_PersistsThroughSink(t *testing.T) {
	bus := NewEventBus(10)
	sink := &recordingSink{done: make(chan struct{}, 4)}
	el := NewEventLogger(sink, bus.SubscribeAll(), logger.Discard())
	el.Start()

	pub := NewPublisher(bus).WithTraceID("trace-1")
	pub.PredictionCompleted(&models.PredictionResult{
		PredictedPrice: 3_000_000,
		Input:          models.ValidatedRequest{District: "Buca", PropertyType: "Daire"},
	})
	pub.TrainingCompleted(&models.TrainingRun{RunID: "run-1", Status: models.TrainingSucceeded})
	pub.StageCompleted("run-1", "load", time.Millisecond)

	for i := 0; i < 2; i++ {
		select {
		case <-sink.done:
		case <-time.After(2 * time.Second):
			t.Fatal("sink not called")
		}
	}
	el.Stop()
	bus.Close()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.predictions, 1)
	assert.Equal(t, "trace-1", sink.predictions[0].TraceID)
	assert.Equal(t, int64(3_000_000), sink.predictions[0].PredictedPrice)
	require.Len(t, sink.runs, 1)
	assert.Equal(t, "run-1", sink.runs[0].RunID)
}

func TestEventLogger_StopsWhenChannelCloses(t *testing.T) {
	bus := NewEventBus(1)
	el := NewEventLogger(nil, bus.SubscribeAll(), logger.Discard())
	el.Start()

	bus.Close()

	done := make(chan struct{})
	go func() {
		el.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("logger did not stop")
	}
}
