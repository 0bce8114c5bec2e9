// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/lingopack-go/internal/model"
)

// EventKind identifies one of the seven batch lifecycle events.
type EventKind string

// Batch lifecycle event kinds
const (
	EventBatchStarted   EventKind = "batch.started"
	EventBatchProgress  EventKind = "batch.progress"
	EventBatchCompleted EventKind = "batch.completed"
	EventBatchFailed    EventKind = "batch.failed"
	EventBatchPaused    EventKind = "batch.paused"
	EventBatchResumed   EventKind = "batch.resumed"
	EventBatchCancelled EventKind = "batch.cancelled"
)

// Event is an immutable fact about a batch state transition. Delivery to
// subscribers is at-least-once; consumers dedupe by ID.
//
// For a single batch the stream is ordered: one started event, zero or more
// progress events with optional paused/resumed pairs interleaved, then
// exactly one terminal event (completed, failed or cancelled).
type Event struct {
	ID                string        `json:"id"`
	Kind              EventKind     `json:"kind"`
	BatchID           int64         `json:"batch_id"`
	ProjectLanguageID int64         `json:"project_language_id"`
	OccurredAt        time.Time     `json:"occurred_at"`
	ProviderID        string        `json:"provider_id,omitempty"`
	BatchNumber       int64         `json:"batch_number,omitempty"`
	TotalUnits        int64         `json:"total_units"`
	CompletedUnits    int64         `json:"completed_units"`
	FailedUnits       int64         `json:"failed_units"`
	ErrorMessage      string        `json:"error_message,omitempty"`
	RetryCount        int64         `json:"retry_count,omitempty"`
	Reason            string        `json:"reason,omitempty"`
	Duration          time.Duration `json:"duration,omitempty"`
}

func newEvent(kind EventKind, batch *model.TranslationBatch) Event {
	return Event{
		ID:                uuid.NewString(),
		Kind:              kind,
		BatchID:           batch.ID,
		ProjectLanguageID: batch.ProjectLanguageID,
		OccurredAt:        time.Now(),
	}
}

// ProgressPercent returns completion as a percentage, 0 when the batch is empty.
func (e Event) ProgressPercent() float64 {
	if e.TotalUnits == 0 {
		return 0
	}
	return float64(e.CompletedUnits) / float64(e.TotalUnits) * 100
}

// RemainingUnits returns the number of units not yet in a terminal state.
func (e Event) RemainingUnits() int64 {
	return e.TotalUnits - e.CompletedUnits - e.FailedUnits
}

// SuccessRate returns the fraction of units completed successfully, 0 when empty.
func (e Event) SuccessRate() float64 {
	if e.TotalUnits == 0 {
		return 0
	}
	return float64(e.CompletedUnits) / float64(e.TotalUnits)
}

// HasFailures reports whether any unit of the batch failed.
func (e Event) HasFailures() bool {
	return e.FailedUnits > 0
}

// CanRetry reports whether a failed batch still has retry budget.
func (e Event) CanRetry() bool {
	return e.RetryCount < model.MaxBatchRetries
}
