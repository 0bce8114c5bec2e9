// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// SourceLanguageCode is the fixed source language for all content.
// Mods are authored in English; only the target side varies.
const SourceLanguageCode = "en"

// DefaultTargetLanguage is the degraded fallback used when the project
// language cannot be resolved.
const DefaultTargetLanguage = "EN"

// TranslationContext is the immutable request envelope shared by every unit
// of one batch run. Changing the target language or glossary requires
// building a new context and planning a new batch, never mutating in place.
type TranslationContext struct {
	ID                string         `json:"id"` // uuid
	ProjectID         int64          `json:"project_id"`
	ProjectLanguageID int64          `json:"project_language_id"`
	ProviderID        string         `json:"provider_id"`
	ModelID           string         `json:"model_id,omitempty"`
	SourceLanguage    string         `json:"source_language"`
	TargetLanguage    string         `json:"target_language"` // uppercased 2-letter code
	GlossaryID        int64          `json:"glossary_id"`     // 0 when no glossary applies
	Terms             []GlossaryTerm `json:"terms,omitempty"`
	UnitsPerBatch     int            `json:"units_per_batch"` // 0 = engine picks the chunk size
	ParallelBatches   int            `json:"parallel_batches"`
	SkipMemory        bool           `json:"skip_memory"` // skip translation-memory hints
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Equal reports whether two contexts would produce identical provider
// requests. The id and timestamps are excluded; contexts are rebuilt per run
// and compared to detect configuration drift between runs.
func (c *TranslationContext) Equal(other *TranslationContext) bool {
	if other == nil {
		return false
	}
	if c.ProjectID != other.ProjectID ||
		c.ProjectLanguageID != other.ProjectLanguageID ||
		c.ProviderID != other.ProviderID ||
		c.ModelID != other.ModelID ||
		c.SourceLanguage != other.SourceLanguage ||
		c.TargetLanguage != other.TargetLanguage ||
		c.GlossaryID != other.GlossaryID ||
		c.UnitsPerBatch != other.UnitsPerBatch ||
		c.ParallelBatches != other.ParallelBatches ||
		c.SkipMemory != other.SkipMemory {
		return false
	}
	if len(c.Terms) != len(other.Terms) {
		return false
	}
	for i := range c.Terms {
		if !c.Terms[i].Equal(&other.Terms[i]) {
			return false
		}
	}
	return true
}
