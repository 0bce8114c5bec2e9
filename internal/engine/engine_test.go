// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"database/sql"
	"testing"

	"github.com/olegiv/lingopack-go/internal/store"
	"github.com/olegiv/lingopack-go/internal/testutil"
)

// testFixture holds a seeded project language with translatable units.
type testFixture struct {
	ProjectID         int64
	LanguageID        int64
	ProjectLanguageID int64
	UnitIDs           []int64
	UnitKeys          []string
}

func testQueries(t *testing.T) (*sql.DB, *store.Queries) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return db, store.New(db)
}

// seedUnits creates a project, a German project language and n units with
// keys "k00".."kNN".
func seedUnits(t *testing.T, q *store.Queries, n int) testFixture {
	t.Helper()
	ctx := context.Background()

	project, err := q.CreateProject(ctx, store.CreateProjectParams{
		GameID: 7,
		Name:   "Moonfall Chronicles",
		Slug:   "moonfall-chronicles",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	lang, err := q.CreateLanguage(ctx, store.CreateLanguageParams{
		Code: "de", Name: "German", NativeName: "Deutsch", IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateLanguage: %v", err)
	}

	pl, err := q.CreateProjectLanguage(ctx, project.ID, lang.ID)
	if err != nil {
		t.Fatalf("CreateProjectLanguage: %v", err)
	}

	fix := testFixture{
		ProjectID:         project.ID,
		LanguageID:        lang.ID,
		ProjectLanguageID: pl.ID,
	}
	for i := 0; i < n; i++ {
		key := "k" + string(rune('0'+i/10)) + string(rune('0'+i%10))
		unit, err := q.CreateUnit(ctx, store.CreateUnitParams{
			ProjectID:  project.ID,
			SourceFile: "quests.json",
			Key:        key,
			SourceText: "Quest line " + key,
		})
		if err != nil {
			t.Fatalf("CreateUnit: %v", err)
		}
		fix.UnitIDs = append(fix.UnitIDs, unit.ID)
		fix.UnitKeys = append(fix.UnitKeys, key)
	}
	return fix
}
