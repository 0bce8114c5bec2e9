// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package provider

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ProviderStatic is the id of the built-in deterministic provider.
const ProviderStatic = "static"

// Static is a deterministic offline translator for development and tests.
// It prefixes each source text with the lowercased target language code,
// so output is predictable and visibly "translated".
type Static struct {
	id    string
	delay time.Duration

	// failKeys lists unit keys that report a unit-local failure. Used to
	// exercise partial-failure paths without a real backend.
	failKeys map[string]bool
}

// StaticOption configures a Static translator.
type StaticOption func(*Static)

// WithDelay makes every call sleep to simulate backend latency.
func WithDelay(d time.Duration) StaticOption {
	return func(s *Static) { s.delay = d }
}

// WithFailingKeys marks unit keys whose translation always fails.
func WithFailingKeys(keys ...string) StaticOption {
	return func(s *Static) {
		for _, k := range keys {
			s.failKeys[k] = true
		}
	}
}

// NewStatic creates the deterministic provider.
func NewStatic(opts ...StaticOption) *Static {
	s := &Static{
		id:       ProviderStatic,
		failKeys: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements Translator.
func (s *Static) ID() string { return s.id }

// Translate implements Translator. It honors context cancellation during the
// configured delay and never returns a request-level error otherwise.
func (s *Static) Translate(ctx context.Context, req *Request) (*Result, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	prefix := "[" + strings.ToLower(req.TargetLanguage) + "] "
	res := &Result{
		Translations: make(map[int64]string, len(req.Units)),
		Failed:       make(map[int64]string),
	}
	for _, u := range req.Units {
		if s.failKeys[u.Key] {
			res.Failed[u.ID] = fmt.Sprintf("static provider configured to fail key %q", u.Key)
			continue
		}
		res.Translations[u.ID] = prefix + u.Text
	}
	return res, nil
}
