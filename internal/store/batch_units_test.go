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

func TestCreateBatchUnitsProcessingOrder(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 4)

	b, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 4})
	require.NoError(t, err)

	// Order follows the input slice, not unit id order.
	permuted := []int64{fix.UnitIDs[2], fix.UnitIDs[0], fix.UnitIDs[3], fix.UnitIDs[1]}
	require.NoError(t, q.CreateBatchUnits(ctx, b.ID, permuted))

	units, err := q.ListBatchUnits(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, units, 4)
	for i, bu := range units {
		assert.Equal(t, int64(i), bu.ProcessingOrder)
		assert.Equal(t, permuted[i], bu.UnitID)
		assert.Equal(t, model.UnitStatusPending, bu.Status)
	}
}

func TestCreateBatchUnitsRejectsDuplicates(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 2)

	b, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 2})
	require.NoError(t, err)

	err = q.CreateBatchUnits(ctx, b.ID, []int64{fix.UnitIDs[0], fix.UnitIDs[0]})
	assert.Error(t, err)
}

func TestUpdateBatchUnitStatus(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 2)

	b, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 2})
	require.NoError(t, err)
	require.NoError(t, q.CreateBatchUnits(ctx, b.ID, fix.UnitIDs))

	require.NoError(t, q.UpdateBatchUnitStatus(ctx, UpdateBatchUnitStatusParams{
		BatchID: b.ID,
		UnitID:  fix.UnitIDs[0],
		Status:  model.UnitStatusCompleted,
	}))
	require.NoError(t, q.UpdateBatchUnitStatus(ctx, UpdateBatchUnitStatusParams{
		BatchID:      b.ID,
		UnitID:       fix.UnitIDs[1],
		Status:       model.UnitStatusFailed,
		ErrorMessage: "empty provider response",
	}))

	units, err := q.ListBatchUnits(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, model.UnitStatusCompleted, units[0].Status)
	assert.False(t, units[0].ErrorMessage.Valid)
	assert.Equal(t, model.UnitStatusFailed, units[1].Status)
	require.True(t, units[1].ErrorMessage.Valid)
	assert.Equal(t, "empty provider response", units[1].ErrorMessage.String)
}

func TestBulkUpdateBatchUnitStatus(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 3)

	b, err := q.CreateBatch(ctx, CreateBatchParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static", UnitCount: 3})
	require.NoError(t, err)
	require.NoError(t, q.CreateBatchUnits(ctx, b.ID, fix.UnitIDs))

	require.NoError(t, q.BulkUpdateBatchUnitStatus(ctx, b.ID, fix.UnitIDs[:2], model.UnitStatusCompleted))

	counts, err := q.CountBatchUnitsByStatus(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.UnitStatusCompleted])
	assert.Equal(t, int64(1), counts[model.UnitStatusPending])
	assert.Equal(t, int64(0), counts[model.UnitStatusFailed])
}
