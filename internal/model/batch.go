// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// BatchStatus is the lifecycle state of a translation batch.
type BatchStatus string

// Batch lifecycle states
const (
	BatchStatusPending     BatchStatus = "pending"
	BatchStatusTranslating BatchStatus = "translating"
	BatchStatusPaused      BatchStatus = "paused"
	BatchStatusCompleted   BatchStatus = "completed"
	BatchStatusFailed      BatchStatus = "failed"
	BatchStatusCancelled   BatchStatus = "cancelled"
)

// MaxBatchRetries bounds batch-level retries. A batch whose retry count has
// reached this value is permanently failed and requires a new batch.
const MaxBatchRetries = 3

// batchTransitions is the closed transition table for batch statuses.
// A failed batch may return to translating via a retry.
var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchStatusPending:     {BatchStatusTranslating, BatchStatusCancelled, BatchStatusFailed},
	BatchStatusTranslating: {BatchStatusPaused, BatchStatusCompleted, BatchStatusFailed, BatchStatusCancelled},
	BatchStatusPaused:      {BatchStatusTranslating, BatchStatusCancelled, BatchStatusFailed},
	BatchStatusFailed:      {BatchStatusTranslating},
	BatchStatusCompleted:   {},
	BatchStatusCancelled:   {},
}

// Terminal reports whether the status ends a batch run. A failed batch is
// terminal for the run but may still be retried while the retry budget lasts.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed || s == BatchStatusCancelled
}

// CanTransitionTo reports whether the state machine permits moving from s to next.
func (s BatchStatus) CanTransitionTo(next BatchStatus) bool {
	for _, t := range batchTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// TranslationBatch is one execution attempt grouping a bounded set of units
// for a single project language. Batches are retained as an audit trail and
// are only removed when the owning project language is deleted.
type TranslationBatch struct {
	ID                int64          `json:"id"`
	ProjectLanguageID int64          `json:"project_language_id"`
	ProviderID        string         `json:"provider_id"`
	BatchNumber       int64          `json:"batch_number"` // 1-based, unique per project language
	UnitCount         int64          `json:"unit_count"`
	Status            BatchStatus    `json:"status"`
	RetryCount        int64          `json:"retry_count"`
	ErrorMessage      sql.NullString `json:"error_message"`
	StartedAt         sql.NullTime   `json:"started_at"`
	CompletedAt       sql.NullTime   `json:"completed_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// CanRetry reports whether a failed batch may be retried.
func (b *TranslationBatch) CanRetry() bool {
	return b.RetryCount < MaxBatchRetries
}

// ProcessingDuration returns the wall-clock duration of the batch run,
// or zero if the batch has not both started and finished.
func (b *TranslationBatch) ProcessingDuration() time.Duration {
	if !b.StartedAt.Valid || !b.CompletedAt.Valid {
		return 0
	}
	return b.CompletedAt.Time.Sub(b.StartedAt.Time)
}
