package orchestrator

import (
	"log"
	"sync"
	"time"
)

// defaultEmitGrace is how long Emit waits on a full buffer before dropping.
const defaultEmitGrace = 100 * time.Millisecond

// EventEmitter fans workflow events into one buffered channel for a single
// consumer. Workflows never wait on a slow consumer for longer than the
// grace period; events that still do not fit are dropped and counted.
type EventEmitter struct {
	ch    chan WorkflowEvent
	grace time.Duration

	mu      sync.RWMutex
	closed  bool
	dropped map[EventType]uint64
	total   uint64
}

// NewEventEmitter creates an emitter with room for bufferSize pending events.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		ch:      make(chan WorkflowEvent, bufferSize),
		grace:   defaultEmitGrace,
		dropped: make(map[EventType]uint64),
	}
}

// Emit stamps ev and queues it. No-op on a nil or closed emitter.
func (e *EventEmitter) Emit(ev WorkflowEvent) {
	if e == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return
	}
	delivered := e.send(ev)
	e.mu.RUnlock()

	if !delivered {
		e.drop(ev.Type)
	}
}

// send must be called with the read lock held so Close cannot race it.
func (e *EventEmitter) send(ev WorkflowEvent) bool {
	select {
	case e.ch <- ev:
		return true
	default:
	}

	timer := time.NewTimer(e.grace)
	defer timer.Stop()
	select {
	case e.ch <- ev:
		return true
	case <-timer.C:
		return false
	}
}

func (e *EventEmitter) drop(t EventType) {
	e.mu.Lock()
	e.dropped[t]++
	e.total++
	n := e.total
	e.mu.Unlock()

	// log the 1st, 2nd, 4th, 8th... drop
	if n&(n-1) == 0 {
		log.Printf("[orchestrator] event buffer full, dropped %s (%d dropped so far)", t, n)
	}
}

// DroppedCount returns how many events have been dropped in total.
func (e *EventEmitter) DroppedCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.total
}

// Dropped returns the drop count per event type.
func (e *EventEmitter) Dropped() map[EventType]uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[EventType]uint64, len(e.dropped))
	for t, n := range e.dropped {
		out[t] = n
	}
	return out
}

// Events is the consumer side; it is closed by Close.
func (e *EventEmitter) Events() <-chan WorkflowEvent {
	return e.ch
}

// Close closes the channel. Later Emit calls are dropped silently.
func (e *EventEmitter) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
