// Package events provides an in-process event bus carrying decision-core
// outcomes to alert-dispatch and logging collaborators, so they consume
// BarResult-derived events instead of re-deriving gating logic.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/signalcraft/decision-engine/pkg/types"
)

// EventType defines the category of event.
type EventType string

const (
	EventTypeSignal       EventType = "signal"
	EventTypeExit         EventType = "exit"
	EventTypeRegimeChange EventType = "regime_change"
	EventTypeConflict     EventType = "conflict"
)

// Event is the base interface for all bus events.
type Event interface {
	GetType() EventType
	GetTimestamp() time.Time
	GetSymbol() string
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	Type      EventType `json:"type"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) GetType() EventType      { return e.Type }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetSymbol() string       { return e.Symbol }

// SignalEvent is published when an entry is executed.
type SignalEvent struct {
	BaseEvent
	Action     types.Action `json:"action"`
	BarIndex   int          `json:"barIndex"`
	Confidence float64      `json:"confidence"`
}

// ExitEvent is published when a position is closed.
type ExitEvent struct {
	BaseEvent
	Action   types.Action `json:"action"`
	BarIndex int          `json:"barIndex"`
	Reason   string       `json:"reason"`
}

// RegimeChangeEvent is published when the effective regime state moves.
type RegimeChangeEvent struct {
	BaseEvent
	From     types.RegimeState `json:"from"`
	To       types.RegimeState `json:"to"`
	BarIndex int               `json:"barIndex"`
}

// ConflictEvent is published when simultaneous buy+short were cancelled.
type ConflictEvent struct {
	BaseEvent
	BarIndex int `json:"barIndex"`
}

// Handler processes one event.
type Handler func(Event) error

// Bus is a synchronous, type-keyed event bus. Handlers run on the
// publishing goroutine; a panicking handler is recovered and counted, so
// one bad subscriber cannot corrupt a replay.
type Bus struct {
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers map[EventType][]Handler

	published atomic.Int64
	errors    atomic.Int64
}

// NewBus creates an event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger:      logger,
		subscribers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(t EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[t] = append(b.subscribers[t], h)
}

// Publish delivers the event to every subscriber of its type.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := b.subscribers[e.GetType()]
	b.mu.RUnlock()

	b.published.Add(1)
	for _, h := range subs {
		b.deliver(h, e)
	}
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.errors.Add(1)
			b.logger.Error("event handler panic",
				zap.String("type", string(e.GetType())),
				zap.Any("panic", r),
			)
		}
	}()

	if err := h(e); err != nil {
		b.errors.Add(1)
		b.logger.Warn("event handler error",
			zap.String("type", string(e.GetType())),
			zap.Error(err),
		)
	}
}

// Stats returns published and error counts.
func (b *Bus) Stats() (published, errors int64) {
	return b.published.Load(), b.errors.Load()
}
