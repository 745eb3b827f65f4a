// Package events implements a small in-process pub/sub bus with
// best-effort, at-most-once delivery for UI-facing signals.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event names published by this service.
const (
	QuestProgress = "quest.progress"
	XPUpdated     = "xp.updated"
)

// Quest actions carried in the payload of QuestProgress events.
const (
	ActionFollowUser = "follow_user"
	ActionGrantOuros = "grant_ouros"
)

// Event is a named signal with an opaque string payload map.
type Event struct {
	Name      string
	Payload   map[string]string
	Timestamp time.Time
}

// Bus dispatches events to subscriber channels. Publishing never blocks:
// a subscriber whose buffer is full misses the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	published   atomic.Uint64
	dropped     atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe returns a buffered channel that will receive future events.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the event to every subscriber without blocking.
// Safe to call from any goroutine; a full subscriber drops the event.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	b.published.Add(1)

	b.mu.RLock()
	for _, sub := range b.subscribers {
		select {
		case sub <- e:
		default:
			b.dropped.Add(1)
		}
	}
	b.mu.RUnlock()
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}

// Stats reports lifetime publish/drop counters.
func (b *Bus) Stats() (published, dropped uint64) {
	return b.published.Load(), b.dropped.Load()
}
