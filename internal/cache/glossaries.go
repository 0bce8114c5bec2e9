// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/lingopack-go/internal/model"
	"github.com/olegiv/lingopack-go/internal/store"
)

const glossaryTTL = 10 * time.Minute

// ResolvedGlossary is the glossary selected for one game/language pair,
// with its terms loaded. A zero GlossaryID means no glossary applies.
type ResolvedGlossary struct {
	GlossaryID int64                `json:"glossary_id"`
	Name       string               `json:"name"`
	Terms      []model.GlossaryTerm `json:"terms,omitempty"`
}

// GlossaryCache resolves and caches glossaries per game and target language.
// A game-scoped glossary wins over a universal one for the same language.
type GlossaryCache struct {
	queries *store.Queries
	cache   *TypedCache[ResolvedGlossary]
}

// NewGlossaryCache creates a glossary cache over the given backend.
func NewGlossaryCache(queries *store.Queries, backend Cacher) *GlossaryCache {
	return &GlossaryCache{
		queries: queries,
		cache:   NewTypedCache[ResolvedGlossary](backend, glossaryTTL),
	}
}

func glossaryKey(gameID int64, languageCode string) string {
	return fmt.Sprintf("glossary:%d:%s", gameID, languageCode)
}

// ResolveForGame returns the glossary for a game and target language. The
// result is never nil; a pair without any glossary resolves to an empty
// ResolvedGlossary with GlossaryID zero.
func (c *GlossaryCache) ResolveForGame(ctx context.Context, gameID int64, languageCode string) (*ResolvedGlossary, error) {
	return c.cache.GetOrSet(ctx, glossaryKey(gameID, languageCode), func() (*ResolvedGlossary, error) {
		glossaries, err := c.queries.ListGlossariesForGame(ctx, gameID, languageCode)
		if err != nil {
			return nil, fmt.Errorf("listing glossaries: %w", err)
		}
		if len(glossaries) == 0 {
			return &ResolvedGlossary{}, nil
		}

		// Game-scoped glossaries sort before universal ones.
		g := glossaries[0]
		terms, err := c.queries.ListGlossaryTerms(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("listing glossary terms: %w", err)
		}
		return &ResolvedGlossary{
			GlossaryID: g.ID,
			Name:       g.Name,
			Terms:      terms,
		}, nil
	})
}

// Invalidate drops the cached resolution for one game/language pair.
func (c *GlossaryCache) Invalidate(ctx context.Context, gameID int64, languageCode string) error {
	return c.cache.Delete(ctx, glossaryKey(gameID, languageCode))
}
