// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Glossary is a controlled source-to-target vocabulary scoped to a game
// installation and target language. A glossary with no game id is universal
// and applies to every project targeting its language.
type Glossary struct {
	ID           int64         `json:"id"`
	GameID       sql.NullInt64 `json:"game_id"` // null = universal glossary
	LanguageCode string        `json:"language_code"`
	Name         string        `json:"name"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsUniversal reports whether the glossary applies to all games.
func (g *Glossary) IsUniversal() bool {
	return !g.GameID.Valid
}

// GlossaryTerm maps one source term to its mandated translation.
// Variants hold additional surface forms of the source term (inflections,
// plurals) that providers should also match.
type GlossaryTerm struct {
	ID         int64    `json:"id"`
	GlossaryID int64    `json:"glossary_id"`
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Variants   []string `json:"variants,omitempty"`
}

// Equal reports whether two terms carry the same mapping.
func (t *GlossaryTerm) Equal(other *GlossaryTerm) bool {
	if other == nil {
		return false
	}
	if t.Source != other.Source || t.Target != other.Target {
		return false
	}
	if len(t.Variants) != len(other.Variants) {
		return false
	}
	for i := range t.Variants {
		if t.Variants[i] != other.Variants[i] {
			return false
		}
	}
	return true
}
