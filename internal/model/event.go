// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryBatch    = "batch"
	EventCategoryProvider = "provider"
	EventCategoryImport   = "import"
	EventCategoryExport   = "export"
	EventCategorySystem   = "system"
)

// Event represents a system event log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	BatchID   sql.NullInt64
	Metadata  string // JSON string
	CreatedAt time.Time
}
