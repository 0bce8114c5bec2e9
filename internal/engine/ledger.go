// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"fmt"
	"sync"

	"github.com/olegiv/lingopack-go/internal/model"
)

// Ledger is the in-memory view of one batch's unit states during a run.
// It keeps O(1) aggregate counters and enforces that unit transitions are
// monotonic: once a unit is completed or failed it never changes again.
// The ledger is safe for concurrent use by pool workers; the database rows
// remain the source of truth and are updated alongside.
type Ledger struct {
	mu        sync.RWMutex
	batchID   int64
	order     []int64 // unit ids in processing order
	status    map[int64]model.UnitStatus
	completed int64
	failed    int64
}

// NewLedger builds a ledger from the persisted unit rows of a batch.
// Units must already be sorted by processing order.
func NewLedger(batchID int64, units []model.TranslationBatchUnit) *Ledger {
	l := &Ledger{
		batchID: batchID,
		order:   make([]int64, 0, len(units)),
		status:  make(map[int64]model.UnitStatus, len(units)),
	}
	for _, u := range units {
		l.order = append(l.order, u.UnitID)
		l.status[u.UnitID] = u.Status
		switch u.Status {
		case model.UnitStatusCompleted:
			l.completed++
		case model.UnitStatusFailed:
			l.failed++
		}
	}
	return l
}

// BatchID returns the batch this ledger tracks.
func (l *Ledger) BatchID() int64 { return l.batchID }

// Total returns the number of units in the batch.
func (l *Ledger) Total() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.order))
}

// Completed returns the number of successfully translated units.
func (l *Ledger) Completed() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.completed
}

// Failed returns the number of units that failed.
func (l *Ledger) Failed() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.failed
}

// Remaining returns the number of units still pending.
func (l *Ledger) Remaining() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.order)) - l.completed - l.failed
}

// Status returns the current status of a unit and whether it belongs to the batch.
func (l *Ledger) Status(unitID int64) (model.UnitStatus, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.status[unitID]
	return s, ok
}

// MarkCompleted moves a unit to completed. Returns ErrInvalidTransition if
// the unit is already terminal and an error if the unit is not in the batch.
func (l *Ledger) MarkCompleted(unitID int64) error {
	return l.mark(unitID, model.UnitStatusCompleted)
}

// MarkFailed moves a unit to failed. Returns ErrInvalidTransition if the
// unit is already terminal and an error if the unit is not in the batch.
func (l *Ledger) MarkFailed(unitID int64) error {
	return l.mark(unitID, model.UnitStatusFailed)
}

func (l *Ledger) mark(unitID int64, next model.UnitStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.status[unitID]
	if !ok {
		return fmt.Errorf("unit %d not in batch %d", unitID, l.batchID)
	}
	if current.Terminal() {
		return fmt.Errorf("unit %d already %s: %w", unitID, current, ErrInvalidTransition)
	}

	l.status[unitID] = next
	switch next {
	case model.UnitStatusCompleted:
		l.completed++
	case model.UnitStatusFailed:
		l.failed++
	}
	return nil
}

// Pending returns the unit ids still pending, in processing order. A resumed
// or retried run dispatches exactly this sequence.
func (l *Ledger) Pending() []int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pending := make([]int64, 0, int64(len(l.order))-l.completed-l.failed)
	for _, id := range l.order {
		if !l.status[id].Terminal() {
			pending = append(pending, id)
		}
	}
	return pending
}

// Settled reports whether every unit has reached a terminal status.
func (l *Ledger) Settled() bool {
	return l.Remaining() == 0
}

// Snapshot is a point-in-time aggregate of the ledger counters.
type Snapshot struct {
	Total     int64
	Completed int64
	Failed    int64
}

// Snapshot returns a consistent read of all counters.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		Total:     int64(len(l.order)),
		Completed: l.completed,
		Failed:    l.failed,
	}
}
