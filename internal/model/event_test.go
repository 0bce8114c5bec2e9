// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestEventLevelConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"info level", EventLevelInfo, "info"},
		{"warning level", EventLevelWarning, "warning"},
		{"error level", EventLevelError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("constant = %q, want %q", tt.constant, tt.expected)
			}
		})
	}
}

func TestEventCategoryConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"batch category", EventCategoryBatch, "batch"},
		{"provider category", EventCategoryProvider, "provider"},
		{"import category", EventCategoryImport, "import"},
		{"export category", EventCategoryExport, "export"},
		{"system category", EventCategorySystem, "system"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("constant = %q, want %q", tt.constant, tt.expected)
			}
		})
	}
}

func TestEventCategoriesUnique(t *testing.T) {
	categories := []string{
		EventCategoryBatch,
		EventCategoryProvider,
		EventCategoryImport,
		EventCategoryExport,
		EventCategorySystem,
	}

	seen := make(map[string]bool)
	for _, cat := range categories {
		if seen[cat] {
			t.Errorf("duplicate category: %q", cat)
		}
		seen[cat] = true
	}
}

func TestEventStruct(t *testing.T) {
	event := Event{
		ID:       1,
		Level:    EventLevelWarning,
		Category: EventCategoryProvider,
		Message:  "provider request throttled",
		Metadata: `{"batch_id": "4"}`,
	}

	if event.ID != 1 {
		t.Errorf("ID = %d, want 1", event.ID)
	}
	if event.Level != "warning" {
		t.Errorf("Level = %q, want %q", event.Level, "warning")
	}
	if event.Category != "provider" {
		t.Errorf("Category = %q, want %q", event.Category, "provider")
	}
	if event.BatchID.Valid {
		t.Error("BatchID should be null by default")
	}
	if event.Metadata != `{"batch_id": "4"}` {
		t.Errorf("Metadata = %q, want %q", event.Metadata, `{"batch_id": "4"}`)
	}
}
