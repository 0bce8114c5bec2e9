// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/lingopack-go/internal/model"
)

func TestCreateBatchNumbering(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 3)

	first, err := q.CreateBatch(ctx, CreateBatchParams{
		ProjectLanguageID: fix.ProjectLanguageID,
		ProviderID:        "static",
		UnitCount:         3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.BatchNumber)
	assert.Equal(t, model.BatchStatusPending, first.Status)
	assert.Equal(t, int64(0), first.RetryCount)
	assert.False(t, first.StartedAt.Valid)

	second, err := q.CreateBatch(ctx, CreateBatchParams{
		ProjectLanguageID: fix.ProjectLanguageID,
		ProviderID:        "static",
		UnitCount:         1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.BatchNumber)
}

func TestCreateBatchNumberingPerProjectLanguage(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 1)

	// Second language on the same project gets its own number sequence.
	fr, err := q.CreateLanguage(ctx, CreateLanguageParams{Code: "fr", Name: "French", IsActive: true})
	require.NoError(t, err)
	otherPL, err := q.CreateProjectLanguage(ctx, fix.ProjectID, fr.ID)
	require.NoError(t, err)

	_, err = q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 1})
	require.NoError(t, err)
	_, err = q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 1})
	require.NoError(t, err)

	b, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: otherPL.ID, ProviderID: "static", UnitCount: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.BatchNumber)
}

func TestBatchNumberNeverReused(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 1)

	b1, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 1})
	require.NoError(t, err)

	// A cancelled batch stays in the table, so its number stays taken.
	require.NoError(t, q.MarkBatchCancelled(ctx, b1.ID, "operator request"))

	b2, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), b2.BatchNumber)
}

func TestMarkBatchTranslatingKeepsStartTime(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 1)

	b, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 1})
	require.NoError(t, err)

	require.NoError(t, q.MarkBatchTranslating(ctx, b.ID))
	got, err := q.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, got.StartedAt.Valid)
	firstStart := got.StartedAt.Time

	// A retry goes back through translating; the original start time sticks.
	require.NoError(t, q.MarkBatchFailed(ctx, MarkBatchFailedParams{ID: b.ID, ErrorMessage: "provider timeout", RetryCount: 1}))
	require.NoError(t, q.MarkBatchTranslating(ctx, b.ID))

	got, err = q.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusTranslating, got.Status)
	assert.True(t, got.StartedAt.Time.Equal(firstStart))
}

func TestMarkBatchFailedAndCancelled(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 1)

	b, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 1})
	require.NoError(t, err)

	require.NoError(t, q.MarkBatchFailed(ctx, MarkBatchFailedParams{ID: b.ID, ErrorMessage: "rate limited", RetryCount: 2}))
	got, err := q.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, got.Status)
	assert.Equal(t, int64(2), got.RetryCount)
	require.True(t, got.ErrorMessage.Valid)
	assert.Equal(t, "rate limited", got.ErrorMessage.String)
	assert.True(t, got.CompletedAt.Valid)

	c, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 1})
	require.NoError(t, err)
	require.NoError(t, q.MarkBatchCancelled(ctx, c.ID, ""))
	got, err = q.GetBatch(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCancelled, got.Status)
	assert.False(t, got.ErrorMessage.Valid)
}

func TestListBatchesByProjectLanguage(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 1)

	for i := 0; i < 3; i++ {
		_, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 1})
		require.NoError(t, err)
	}

	batches, err := q.ListBatchesByProjectLanguage(ctx, fix.ProjectLanguageID)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, int64(3), batches[0].BatchNumber)
	assert.Equal(t, int64(1), batches[2].BatchNumber)
}
