// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"

	"github.com/olegiv/lingopack-go/internal/model"
	"github.com/olegiv/lingopack-go/internal/store"
)

// LanguageCache provides cached access to the language table. The table is
// tiny and changes rarely, so it is loaded whole on first access and kept
// until invalidated.
type LanguageCache struct {
	queries *store.Queries

	mu        sync.RWMutex
	languages []model.Language
	byCode    map[string]model.Language
	byID      map[int64]model.Language
	loaded    bool
}

// NewLanguageCache creates a language cache.
func NewLanguageCache(queries *store.Queries) *LanguageCache {
	return &LanguageCache{
		queries: queries,
		byCode:  make(map[string]model.Language),
		byID:    make(map[int64]model.Language),
	}
}

// GetAll returns all languages ordered by code.
func (c *LanguageCache) GetAll(ctx context.Context) ([]model.Language, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]model.Language, len(c.languages))
	copy(result, c.languages)
	return result, nil
}

// GetByCode returns the language with the given ISO 639-1 code, or nil.
func (c *LanguageCache) GetByCode(ctx context.Context, code string) (*model.Language, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if lang, ok := c.byCode[code]; ok {
		return &lang, nil
	}
	return nil, nil
}

// GetByID returns the language with the given id, or nil.
func (c *LanguageCache) GetByID(ctx context.Context, id int64) (*model.Language, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if lang, ok := c.byID[id]; ok {
		return &lang, nil
	}
	return nil, nil
}

// IsActiveCode reports whether a language code exists and is active.
func (c *LanguageCache) IsActiveCode(ctx context.Context, code string) (bool, error) {
	lang, err := c.GetByCode(ctx, code)
	if err != nil {
		return false, err
	}
	return lang != nil && lang.IsActive, nil
}

// Invalidate clears the cache, forcing a reload on next access.
func (c *LanguageCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.languages = nil
	c.byCode = make(map[string]model.Language)
	c.byID = make(map[int64]model.Language)
}

// Preload loads all languages. Useful for warming up on startup.
func (c *LanguageCache) Preload(ctx context.Context) error {
	return c.ensureLoaded(ctx)
}

func (c *LanguageCache) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	languages, err := c.queries.ListLanguages(ctx)
	if err != nil {
		return err
	}

	c.languages = languages
	c.byCode = make(map[string]model.Language, len(languages))
	c.byID = make(map[int64]model.Language, len(languages))
	for _, lang := range languages {
		c.byCode[lang.Code] = lang
		c.byID[lang.ID] = lang
	}
	c.loaded = true
	return nil
}
