// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func baseContext() TranslationContext {
	return TranslationContext{
		ID:                "ctx-1",
		ProjectID:         1,
		ProjectLanguageID: 2,
		ProviderID:        "openai",
		ModelID:           "gpt-4o-mini",
		SourceLanguage:    SourceLanguageCode,
		TargetLanguage:    "DE",
		GlossaryID:        5,
		Terms: []GlossaryTerm{
			{Source: "mana", Target: "Mana", Variants: []string{"MP"}},
		},
		UnitsPerBatch:   10,
		ParallelBatches: 2,
	}
}

func TestTranslationContextEqual(t *testing.T) {
	a := baseContext()
	b := baseContext()

	// Id and timestamps are excluded from the comparison.
	b.ID = "ctx-2"
	b.CreatedAt = time.Now()
	if !a.Equal(&b) {
		t.Error("contexts differing only in id/timestamps should be equal")
	}

	if a.Equal(nil) {
		t.Error("context should not equal nil")
	}
}

func TestTranslationContextEqualDetectsDrift(t *testing.T) {
	mutations := map[string]func(*TranslationContext){
		"target language":  func(c *TranslationContext) { c.TargetLanguage = "FR" },
		"provider":         func(c *TranslationContext) { c.ProviderID = "static" },
		"model":            func(c *TranslationContext) { c.ModelID = "gpt-4o" },
		"glossary":         func(c *TranslationContext) { c.GlossaryID = 6 },
		"units per batch":  func(c *TranslationContext) { c.UnitsPerBatch = 5 },
		"parallel batches": func(c *TranslationContext) { c.ParallelBatches = 4 },
		"skip memory":      func(c *TranslationContext) { c.SkipMemory = true },
		"term target":      func(c *TranslationContext) { c.Terms[0].Target = "Zauberkraft" },
		"term variants":    func(c *TranslationContext) { c.Terms[0].Variants = nil },
		"extra term":       func(c *TranslationContext) { c.Terms = append(c.Terms, GlossaryTerm{Source: "guild", Target: "Gilde"}) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			a := baseContext()
			b := baseContext()
			mutate(&b)
			if a.Equal(&b) {
				t.Errorf("change in %s should make contexts unequal", name)
			}
		})
	}
}

func TestGlossaryIsUniversal(t *testing.T) {
	g := Glossary{}
	if !g.IsUniversal() {
		t.Error("glossary without game id should be universal")
	}
}
