// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package provider defines the translation provider contract and the
// built-in implementations.
package provider

import (
	"context"
	"errors"

	"github.com/olegiv/lingopack-go/internal/model"
)

// Unit is one piece of text submitted for translation.
type Unit struct {
	ID   int64  `json:"id"`
	Key  string `json:"key"`
	Text string `json:"text"`
}

// MemoryHint is a prior source/target pair given to the provider for
// terminology and style consistency.
type MemoryHint struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Request carries one chunk of units plus the shared translation context.
type Request struct {
	ContextID      string
	ModelID        string
	SourceLanguage string
	TargetLanguage string
	Terms          []model.GlossaryTerm
	Memory         []MemoryHint
	Units          []Unit
}

// Result holds per-unit outcomes of a request. A unit id appears in exactly
// one of the two maps; ids missing from both are treated as failed by the
// caller. Partial failure is a normal outcome, not an error.
type Result struct {
	// Translations maps unit id to translated text.
	Translations map[int64]string

	// Failed maps unit id to a human-readable failure reason for units the
	// provider could not translate within an otherwise successful call.
	Failed map[int64]string
}

// Translator is a translation backend. Translate returns an error only for
// request-level failures; unit-local problems go into Result.Failed.
type Translator interface {
	ID() string
	Translate(ctx context.Context, req *Request) (*Result, error)
}

// FatalError wraps a request-level failure that retrying cannot fix, such as
// an invalid API key or an unknown model. The batch fails permanently.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err as fatal.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err carries a FatalError anywhere in its chain.
// Errors not marked fatal are treated as transient and count against the
// batch retry budget.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
