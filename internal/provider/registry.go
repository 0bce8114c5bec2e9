// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownProvider indicates a lookup for a provider id that was never registered.
var ErrUnknownProvider = errors.New("unknown provider")

// Registry holds the configured translators keyed by id. Registration
// happens once at startup; lookups are concurrent.
type Registry struct {
	mu          sync.RWMutex
	translators map[string]Translator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{translators: make(map[string]Translator)}
}

// Register adds a translator. Duplicate ids are rejected.
func (r *Registry) Register(t Translator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := t.ID()
	if id == "" {
		return errors.New("provider id must not be empty")
	}
	if _, exists := r.translators[id]; exists {
		return fmt.Errorf("provider %q already registered", id)
	}
	r.translators[id] = t
	return nil
}

// Get returns the translator for the given id.
func (r *Registry) Get(id string) (Translator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.translators[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	return t, nil
}

// IDs returns the registered provider ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.translators))
	for id := range r.translators {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
