// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import "errors"

var (
	// ErrNoUnits indicates there is nothing left to translate for the
	// project language, so no batch was created.
	ErrNoUnits = errors.New("no untranslated units")

	// ErrDuplicateUnits indicates the candidate list contains a unit id
	// more than once. This is a caller bug, not a runtime state.
	ErrDuplicateUnits = errors.New("duplicate unit ids in batch plan")

	// ErrBatchInvalid indicates the batch header exists but its unit rows
	// could not be inserted. The batch must never be executed.
	ErrBatchInvalid = errors.New("batch is invalid and must not be executed")

	// ErrAlreadyRunning indicates a batch for the same project language is
	// already executing. The same project language never runs concurrently.
	ErrAlreadyRunning = errors.New("a batch for this project language is already running")

	// ErrNotRunning indicates the batch id has no active run.
	ErrNotRunning = errors.New("batch is not running")

	// ErrRetryExhausted indicates the batch has used up its retry budget.
	ErrRetryExhausted = errors.New("batch retry budget exhausted")

	// ErrNotRetryable indicates the batch is not in a retryable state.
	ErrNotRetryable = errors.New("batch is not in a retryable state")

	// ErrInvalidTransition indicates an attempt to move a unit out of a
	// terminal status. Unit transitions are monotonic within one batch.
	ErrInvalidTransition = errors.New("invalid unit status transition")
)
