// Package events carries prediction and training lifecycle events from the
// components that emit them to the subscribers that log and persist them.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

// subscription receives the listed event types, or every type when types is nil.
type subscription struct {
	ch    chan *models.Event
	types map[models.EventType]struct{}
}

func (s subscription) wants(t models.EventType) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}

type EventBus struct {
	subs       []subscription
	mu         sync.RWMutex
	bufferSize int
	closed     bool
	dropped    atomic.Uint64
}

func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventBus{bufferSize: bufferSize}
}

// Subscribe returns a channel receiving only the given event types.
func (b *EventBus) Subscribe(types ...models.EventType) <-chan *models.Event {
	set := make(map[models.EventType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return b.add(set)
}

func (b *EventBus) SubscribeAll() <-chan *models.Event {
	return b.add(nil)
}

func (b *EventBus) add(types map[models.EventType]struct{}) <-chan *models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *models.Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, subscription{ch: ch, types: types})
	return ch
}

// Publish never blocks; a full subscriber channel drops the event.
func (b *EventBus) Publish(event *models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, s := range b.subs {
		if !s.wants(event.Type) {
			continue
		}
		select {
		case s.ch <- event:
		default:
			b.dropped.Add(1)
			logger.Warnf("Event channel full, dropping event: %s", event.Type)
		}
	}
}

// Dropped counts deliveries lost to full subscriber channels.
func (b *EventBus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
}

func AllEventTypes() []models.EventType {
	return []models.EventType{
		models.EventTypePredictionCompleted,
		models.EventTypePredictionRejected,
		models.EventTypePredictionFailed,
		models.EventTypeStageCompleted,
		models.EventTypeTrainingCompleted,
		models.EventTypeTrainingFailed,
		models.EventTypeArtifactsLoaded,
	}
}
