// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// UnitStatus is the per-unit state within a batch.
type UnitStatus string

// Batch unit states. A unit moves from pending to exactly one terminal
// state; partial batch failure is a normal outcome, not an error.
const (
	UnitStatusPending   UnitStatus = "pending"
	UnitStatusCompleted UnitStatus = "completed"
	UnitStatusFailed    UnitStatus = "failed"
)

// Terminal reports whether the unit status is final for this batch.
func (s UnitStatus) Terminal() bool {
	return s == UnitStatusCompleted || s == UnitStatusFailed
}

// TranslationBatchUnit is one content unit's assignment within a batch.
// Processing order is a permutation of 0..unitCount-1 and defines the
// dispatch sequence; a unit id appears at most once per batch.
type TranslationBatchUnit struct {
	ID              int64          `json:"id"`
	BatchID         int64          `json:"batch_id"`
	UnitID          int64          `json:"unit_id"`
	ProcessingOrder int64          `json:"processing_order"`
	Status          UnitStatus     `json:"status"`
	ErrorMessage    sql.NullString `json:"error_message"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
