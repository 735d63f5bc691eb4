// Package events provides the pub/sub bus that fans review activity
// out to observers such as the decision journal and the TUI status
// line. Publishing never blocks review actions: plain subscribers get
// ring-buffer semantics, while reliable subscribers (the journal)
// trade blocking sends for zero loss.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event is the base interface for all review events.
type Event interface {
	EventType() string
	Timestamp() time.Time
	WorkspaceID() string
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Type      string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Workspace string    `json:"workspace_id"`
}

func (e BaseEvent) EventType() string   { return e.Type }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) WorkspaceID() string { return e.Workspace }

// NewBaseEvent creates a new base event stamped with the current time.
func NewBaseEvent(eventType, workspaceID string) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Time:      time.Now(),
		Workspace: workspaceID,
	}
}

type subscriber struct {
	ch       chan Event
	types    map[string]bool // empty means all types
	reliable bool
}

// Bus fans events out to subscribers.
type Bus struct {
	mu           sync.RWMutex
	subscribers  []*subscriber
	bufferSize   int
	droppedCount int64
	closed       bool
}

// New creates a Bus with the given per-subscriber buffer size.
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Bus{bufferSize: bufferSize}
}

// Subscribe returns a channel receiving events of the given types, or
// all events when no types are named. The channel uses ring-buffer
// semantics: when it is full the oldest event is dropped to make room.
func (b *Bus) Subscribe(types ...string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{
		ch:    make(chan Event, b.bufferSize),
		types: make(map[string]bool, len(types)),
	}
	for _, t := range types {
		sub.types[t] = true
	}
	b.subscribers = append(b.subscribers, sub)
	return sub.ch
}

// SubscribeReliable returns a channel that never drops events; sends
// block until the consumer keeps up. Meant for the decision journal,
// which must capture every approval and rejection. The consumer must
// drain promptly.
func (b *Bus) SubscribeReliable() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{
		ch:       make(chan Event, b.bufferSize),
		types:    make(map[string]bool),
		reliable: true,
	}
	b.subscribers = append(b.subscribers, sub)
	return sub.ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]*subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		if sub.ch != ch {
			result = append(result, sub)
			continue
		}
		close(sub.ch)
	}
	b.subscribers = result
}

// Publish delivers an event to every matching subscriber. Review
// events are human-paced, so reliable subscribers blocking briefly is
// acceptable; plain subscribers never block the publisher.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	eventType := event.EventType()
	for _, sub := range b.subscribers {
		if len(sub.types) > 0 && !sub.types[eventType] {
			continue
		}
		if sub.reliable {
			sub.ch <- event
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Buffer full: drop the oldest and retry once.
			select {
			case <-sub.ch:
				atomic.AddInt64(&b.droppedCount, 1)
			default:
			}
			select {
			case sub.ch <- event:
			default:
				atomic.AddInt64(&b.droppedCount, 1)
			}
		}
	}
}

// DroppedCount returns the total number of events dropped from plain
// subscriber buffers.
func (b *Bus) DroppedCount() int64 {
	return atomic.LoadInt64(&b.droppedCount)
}

// Close closes the bus and all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, sub := range b.subscribers {
		close(sub.ch)
	}
	b.subscribers = nil
}
