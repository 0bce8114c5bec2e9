// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
)

// testDB creates a temporary database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "lingopack-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// fixture holds a seeded project language with translatable units.
type fixture struct {
	ProjectID         int64
	GameID            int64
	LanguageID        int64
	ProjectLanguageID int64
	UnitIDs           []int64
}

// seedProjectLanguage creates a project, a target language, the project
// language joining them, and n units.
func seedProjectLanguage(t *testing.T, q *Queries, n int) fixture {
	t.Helper()
	ctx := context.Background()

	project, err := q.CreateProject(ctx, CreateProjectParams{
		GameID: 42,
		Name:   "Stellar Saga",
		Slug:   "stellar-saga",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	lang, err := q.CreateLanguage(ctx, CreateLanguageParams{
		Code:       "de",
		Name:       "German",
		NativeName: "Deutsch",
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("CreateLanguage: %v", err)
	}

	pl, err := q.CreateProjectLanguage(ctx, project.ID, lang.ID)
	if err != nil {
		t.Fatalf("CreateProjectLanguage: %v", err)
	}

	unitIDs := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		unit, err := q.CreateUnit(ctx, CreateUnitParams{
			ProjectID:  project.ID,
			SourceFile: "dialogue.json",
			Key:        string(rune('a' + i)),
			SourceText: "line " + string(rune('a'+i)),
		})
		if err != nil {
			t.Fatalf("CreateUnit: %v", err)
		}
		unitIDs = append(unitIDs, unit.ID)
	}

	return fixture{
		ProjectID:         project.ID,
		GameID:            project.GameID,
		LanguageID:        lang.ID,
		ProjectLanguageID: pl.ID,
		UnitIDs:           unitIDs,
	}
}
