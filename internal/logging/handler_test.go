// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/lingopack-go/internal/model"
	"github.com/olegiv/lingopack-go/internal/store"
	"github.com/olegiv/lingopack-go/internal/testutil"
)

func testEventLogger(t *testing.T) (*slog.Logger, *store.Queries) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewEventLogHandler(inner, db))
	return logger, store.New(db)
}

func TestEventLogHandlerMirrorsWarnings(t *testing.T) {
	logger, q := testEventLogger(t)

	logger.Warn("batch stalled", "batch_id", int64(7), "reason", "provider timeout")

	events, err := q.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, model.EventLevelWarning, ev.Level)
	assert.Equal(t, model.EventCategoryBatch, ev.Category)
	assert.Equal(t, "batch stalled", ev.Message)
	require.True(t, ev.BatchID.Valid)
	assert.Equal(t, int64(7), ev.BatchID.Int64)
	assert.Contains(t, ev.Metadata, `"reason":"provider timeout"`)
}

func TestEventLogHandlerSkipsInfo(t *testing.T) {
	logger, q := testEventLogger(t)

	logger.Info("server listening", "addr", "localhost:8080")
	logger.Debug("noisy detail")

	events, err := q.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventLogHandlerErrorLevel(t *testing.T) {
	logger, q := testEventLogger(t)

	logger.Error("openai call failed", "error", "401 unauthorized")

	events, err := q.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventLevelError, events[0].Level)
	assert.Equal(t, model.EventCategoryProvider, events[0].Category)
}

func TestEventLogHandlerExplicitCategory(t *testing.T) {
	logger, q := testEventLogger(t)

	logger.Warn("disk space low", "category", model.EventCategorySystem)

	events, err := q.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventCategorySystem, events[0].Category)
	// The category attribute is routing metadata, not payload.
	assert.NotContains(t, events[0].Metadata, "category")
}

func TestEventLogHandlerCategoryInference(t *testing.T) {
	logger, q := testEventLogger(t)

	logger.Warn("export archive truncated")
	logger.Warn("import skipped malformed row")
	logger.Warn("certificate expires soon")

	events, err := q.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, model.EventCategorySystem, events[0].Category)
	assert.Equal(t, model.EventCategoryImport, events[1].Category)
	assert.Equal(t, model.EventCategoryExport, events[2].Category)
}

func TestEventLogHandlerWithAttrs(t *testing.T) {
	logger, q := testEventLogger(t)

	logger.With("batch_id", int64(12)).Warn("unit failed")

	events, err := q.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventCategoryBatch, events[0].Category)
}

func TestEventLogHandlerCustomLevel(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewEventLogHandlerWithLevel(inner, db, slog.LevelError))
	q := store.New(db)

	logger.Warn("below threshold")
	logger.Error("at threshold")

	events, err := q.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "at threshold", events[0].Message)
}

func TestEscapeJSON(t *testing.T) {
	assert.Equal(t, `line\nbreak`, escapeJSON("line\nbreak"))
	assert.Equal(t, `quote\"inside`, escapeJSON(`quote"inside`))
	assert.Equal(t, `back\\slash`, escapeJSON(`back\slash`))
	assert.Equal(t, "plain", escapeJSON("plain"))
}
