// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUntranslatedUnitIDs(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 3)

	ids, err := q.ListUntranslatedUnitIDs(ctx, fix.ProjectLanguageID)
	require.NoError(t, err)
	assert.ElementsMatch(t, fix.UnitIDs, ids)

	// Translating one unit removes it from the candidate set.
	require.NoError(t, q.UpsertUnitTranslation(ctx, UpsertUnitTranslationParams{
		UnitID:            fix.UnitIDs[1],
		ProjectLanguageID: fix.ProjectLanguageID,
		Text:              "Zeile b",
	}))

	ids, err = q.ListUntranslatedUnitIDs(ctx, fix.ProjectLanguageID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{fix.UnitIDs[0], fix.UnitIDs[2]}, ids)
}

func TestListUntranslatedUnitIDsOrderedBySourceFileAndKey(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 0)

	// Insert out of lexical order on purpose.
	zMenu, err := q.CreateUnit(ctx, CreateUnitParams{ProjectID: fix.ProjectID, SourceFile: "menu.json", Key: "z", SourceText: "Z"})
	require.NoError(t, err)
	aMenu, err := q.CreateUnit(ctx, CreateUnitParams{ProjectID: fix.ProjectID, SourceFile: "menu.json", Key: "a", SourceText: "A"})
	require.NoError(t, err)
	aDialogue, err := q.CreateUnit(ctx, CreateUnitParams{ProjectID: fix.ProjectID, SourceFile: "dialogue.json", Key: "a", SourceText: "A"})
	require.NoError(t, err)

	ids, err := q.ListUntranslatedUnitIDs(ctx, fix.ProjectLanguageID)
	require.NoError(t, err)
	assert.Equal(t, []int64{aDialogue.ID, aMenu.ID, zMenu.ID}, ids)
}

func TestFilterUntranslatedUnitIDsPreservesInputOrder(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 4)

	require.NoError(t, q.UpsertUnitTranslation(ctx, UpsertUnitTranslationParams{
		UnitID:            fix.UnitIDs[2],
		ProjectLanguageID: fix.ProjectLanguageID,
		Text:              "Zeile c",
	}))

	input := []int64{fix.UnitIDs[3], fix.UnitIDs[2], fix.UnitIDs[0]}
	filtered, err := q.FilterUntranslatedUnitIDs(ctx, input, fix.ProjectLanguageID)
	require.NoError(t, err)
	assert.Equal(t, []int64{fix.UnitIDs[3], fix.UnitIDs[0]}, filtered)
}

func TestUpsertUnitTranslationReplaces(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 1)

	require.NoError(t, q.UpsertUnitTranslation(ctx, UpsertUnitTranslationParams{
		UnitID:            fix.UnitIDs[0],
		ProjectLanguageID: fix.ProjectLanguageID,
		Text:              "erste Fassung",
	}))
	require.NoError(t, q.UpsertUnitTranslation(ctx, UpsertUnitTranslationParams{
		UnitID:            fix.UnitIDs[0],
		ProjectLanguageID: fix.ProjectLanguageID,
		Text:              "zweite Fassung",
	}))

	translated, err := q.ListTranslatedUnits(ctx, fix.ProjectLanguageID)
	require.NoError(t, err)
	require.Len(t, translated, 1)
	assert.Equal(t, "zweite Fassung", translated[0].Text)
	assert.Equal(t, fix.UnitIDs[0], translated[0].Unit.ID)
}

func TestListRecentTranslationsLimit(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	fix := seedProjectLanguage(t, q, 5)

	for _, id := range fix.UnitIDs {
		require.NoError(t, q.UpsertUnitTranslation(ctx, UpsertUnitTranslationParams{
			UnitID:            id,
			ProjectLanguageID: fix.ProjectLanguageID,
			Text:              "übersetzt",
		}))
	}

	recent, err := q.ListRecentTranslations(ctx, fix.ProjectLanguageID, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
