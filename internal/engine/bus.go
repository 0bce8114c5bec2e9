// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"log/slog"
	"sync"
)

// subscriptionBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind starts losing events; the audit table keeps the
// full history.
const subscriptionBuffer = 256

// Bus fans batch lifecycle events out to subscribers. Subscriptions are
// explicit handles that callers must close; there is no ambient registry.
// Publishing never blocks the engine: a full subscriber channel drops the
// event for that subscriber only.
type Bus struct {
	mu     sync.Mutex
	logger *slog.Logger
	subs   map[int64]*Subscription
	nextID int64
	closed bool
}

// Subscription is one subscriber's handle on the event stream.
// Events arrive on C in emission order. Close releases the handle.
type Subscription struct {
	C  <-chan Event
	ch chan Event

	bus *Bus
	id  int64

	once sync.Once
}

// NewBus creates an event bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger,
		subs:   make(map[int64]*Subscription),
	}
}

// Subscribe registers a new subscriber. The caller must Close the returned
// subscription when done, or the bus retains it forever.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriptionBuffer)
	b.nextID++
	sub := &Subscription{C: ch, ch: ch, bus: b, id: b.nextID}
	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Close removes the subscription from the bus and closes its channel.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		if _, ok := s.bus.subs[s.id]; ok {
			delete(s.bus.subs, s.id)
			close(s.ch)
		}
		s.bus.mu.Unlock()
	})
}

// Publish delivers an event to every current subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			b.logger.Warn("event subscriber lagging, dropping event",
				"event_id", ev.ID, "kind", ev.Kind, "batch_id", ev.BatchID)
		}
	}
}

// Close shuts the bus down and closes all remaining subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
