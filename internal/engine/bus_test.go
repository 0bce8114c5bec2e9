// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/lingopack-go/internal/testutil"
)

func testEvent(kind EventKind, batchID int64) Event {
	return Event{ID: uuid.NewString(), Kind: kind, BatchID: batchID}
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(testutil.TestLoggerSilent())
	defer bus.Close()

	a := bus.Subscribe()
	defer a.Close()
	b := bus.Subscribe()
	defer b.Close()

	ev := testEvent(EventBatchStarted, 1)
	bus.Publish(ev)

	got := <-a.C
	assert.Equal(t, ev.ID, got.ID)
	got = <-b.C
	assert.Equal(t, ev.ID, got.ID)
}

func TestBusPreservesEmissionOrder(t *testing.T) {
	bus := NewBus(testutil.TestLoggerSilent())
	defer bus.Close()

	sub := bus.Subscribe()
	defer sub.Close()

	kinds := []EventKind{EventBatchStarted, EventBatchProgress, EventBatchProgress, EventBatchCompleted}
	for _, k := range kinds {
		bus.Publish(testEvent(k, 1))
	}

	for _, want := range kinds {
		got := <-sub.C
		assert.Equal(t, want, got.Kind)
	}
}

func TestBusClosedSubscriptionStopsReceiving(t *testing.T) {
	bus := NewBus(testutil.TestLoggerSilent())
	defer bus.Close()

	sub := bus.Subscribe()
	sub.Close()
	sub.Close() // safe to call twice

	// Publish after close must not panic and must not reach the subscriber.
	bus.Publish(testEvent(EventBatchStarted, 1))

	_, open := <-sub.C
	assert.False(t, open)
}

func TestBusDropsWhenSubscriberLags(t *testing.T) {
	bus := NewBus(testutil.TestLoggerSilent())
	defer bus.Close()

	sub := bus.Subscribe()
	defer sub.Close()

	// Overflow the buffer without draining; Publish must never block.
	for i := 0; i < subscriptionBuffer+10; i++ {
		bus.Publish(testEvent(EventBatchProgress, 1))
	}

	received := 0
	for {
		select {
		case <-sub.C:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriptionBuffer, received)
}

func TestBusCloseClosesSubscribers(t *testing.T) {
	bus := NewBus(testutil.TestLoggerSilent())
	sub := bus.Subscribe()

	bus.Close()
	_, open := <-sub.C
	require.False(t, open)

	// Subscribing after close yields an already-closed channel.
	late := bus.Subscribe()
	_, open = <-late.C
	assert.False(t, open)
}
