// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/lingopack-go/internal/cache"
	"github.com/olegiv/lingopack-go/internal/model"
	"github.com/olegiv/lingopack-go/internal/store"
	"github.com/olegiv/lingopack-go/internal/testutil"
)

func testBuilder(t *testing.T, q *store.Queries) *ContextBuilder {
	t.Helper()
	backend := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = backend.Close() })
	return NewContextBuilder(q,
		cache.NewLanguageCache(q),
		cache.NewGlossaryCache(q, backend),
		testutil.TestLoggerSilent())
}

func TestBuildResolvesLanguageAndGlossary(t *testing.T) {
	_, q := testQueries(t)
	fix := seedUnits(t, q, 1)
	ctx := context.Background()

	g, err := q.CreateGlossary(ctx, store.CreateGlossaryParams{
		GameID:       sql.NullInt64{Int64: 7, Valid: true},
		LanguageCode: "de",
		Name:         "Moonfall Terms",
	})
	require.NoError(t, err)
	_, err = q.CreateGlossaryTerm(ctx, store.CreateGlossaryTermParams{
		GlossaryID: g.ID,
		Source:     "moonstone",
		Target:     "Mondstein",
		Variants:   []string{"moonstones"},
	})
	require.NoError(t, err)

	tc := testBuilder(t, q).Build(ctx, BuildParams{
		ProjectLanguageID: fix.ProjectLanguageID,
		ProviderID:        "static",
		ModelID:           "gpt-4o-mini",
		UnitsPerBatch:     5,
		ParallelBatches:   2,
	})

	require.NotNil(t, tc)
	assert.NotEmpty(t, tc.ID)
	assert.Equal(t, fix.ProjectID, tc.ProjectID)
	assert.Equal(t, model.SourceLanguageCode, tc.SourceLanguage)
	assert.Equal(t, "DE", tc.TargetLanguage)
	assert.Equal(t, g.ID, tc.GlossaryID)
	require.Len(t, tc.Terms, 1)
	assert.Equal(t, "Mondstein", tc.Terms[0].Target)
	assert.Equal(t, 5, tc.UnitsPerBatch)
	assert.Equal(t, 2, tc.ParallelBatches)
}

func TestBuildPrefersGameScopedGlossary(t *testing.T) {
	_, q := testQueries(t)
	fix := seedUnits(t, q, 1)
	ctx := context.Background()

	_, err := q.CreateGlossary(ctx, store.CreateGlossaryParams{
		LanguageCode: "de",
		Name:         "Universal Terms",
	})
	require.NoError(t, err)
	scoped, err := q.CreateGlossary(ctx, store.CreateGlossaryParams{
		GameID:       sql.NullInt64{Int64: 7, Valid: true},
		LanguageCode: "de",
		Name:         "Moonfall Terms",
	})
	require.NoError(t, err)

	tc := testBuilder(t, q).Build(ctx, BuildParams{
		ProjectLanguageID: fix.ProjectLanguageID,
		ProviderID:        "static",
	})
	assert.Equal(t, scoped.ID, tc.GlossaryID)
}

func TestBuildDegradesWhenProjectLanguageMissing(t *testing.T) {
	_, q := testQueries(t)
	seedUnits(t, q, 1)

	tc := testBuilder(t, q).Build(context.Background(), BuildParams{
		ProjectLanguageID: 9999,
		ProviderID:        "static",
	})

	// Never fails: the context falls back to safe defaults.
	require.NotNil(t, tc)
	assert.Equal(t, model.DefaultTargetLanguage, tc.TargetLanguage)
	assert.Zero(t, tc.GlossaryID)
	assert.Empty(t, tc.Terms)
	assert.Equal(t, "static", tc.ProviderID)
}

func TestBuildWithoutGlossary(t *testing.T) {
	_, q := testQueries(t)
	fix := seedUnits(t, q, 1)

	tc := testBuilder(t, q).Build(context.Background(), BuildParams{
		ProjectLanguageID: fix.ProjectLanguageID,
		ProviderID:        "static",
	})
	assert.Equal(t, "DE", tc.TargetLanguage)
	assert.Zero(t, tc.GlossaryID)
}

func TestBuildContextsAreIndependent(t *testing.T) {
	_, q := testQueries(t)
	fix := seedUnits(t, q, 1)
	b := testBuilder(t, q)

	first := b.Build(context.Background(), BuildParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static"})
	second := b.Build(context.Background(), BuildParams{ProjectLanguageID: fix.ProjectLanguageID, ProviderID: "static"})

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, first.Equal(second))
}
