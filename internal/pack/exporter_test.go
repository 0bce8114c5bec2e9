// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package pack

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/lingopack-go/internal/store"
	"github.com/olegiv/lingopack-go/internal/testutil"
)

type exportFixture struct {
	ProjectLanguageID int64
}

func seedExport(t *testing.T, q *store.Queries) exportFixture {
	t.Helper()
	ctx := context.Background()

	project, err := q.CreateProject(ctx, store.CreateProjectParams{
		GameID: 11, Name: "Iron Harvest", Slug: "iron-harvest",
	})
	require.NoError(t, err)
	lang, err := q.CreateLanguage(ctx, store.CreateLanguageParams{
		Code: "de", Name: "German", NativeName: "Deutsch", IsActive: true,
	})
	require.NoError(t, err)
	pl, err := q.CreateProjectLanguage(ctx, project.ID, lang.ID)
	require.NoError(t, err)

	seed := []struct {
		file, key, text string
	}{
		{"dialogue.json", "intro", "Welcome, commander"},
		{"dialogue.json", "outro", "Farewell"},
		{"menu.json", "start", "Start"},
	}
	for _, s := range seed {
		u, err := q.CreateUnit(ctx, store.CreateUnitParams{
			ProjectID: project.ID, SourceFile: s.file, Key: s.key, SourceText: s.text,
		})
		require.NoError(t, err)
		require.NoError(t, q.UpsertUnitTranslation(ctx, store.UpsertUnitTranslationParams{
			UnitID: u.ID, ProjectLanguageID: pl.ID, Text: "[de] " + s.text,
		}))
	}

	// An untranslated unit must not show up in the pack.
	_, err = q.CreateUnit(ctx, store.CreateUnitParams{
		ProjectID: project.ID, SourceFile: "menu.json", Key: "quit", SourceText: "Quit",
	})
	require.NoError(t, err)

	return exportFixture{ProjectLanguageID: pl.ID}
}

func readZipEntry(t *testing.T, zr *zip.Reader, name string, v any) {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, v))
		return
	}
	t.Fatalf("entry %s not found in archive", name)
}

func TestExportToWriter(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	q := store.New(db)
	fix := seedExport(t, q)

	var buf bytes.Buffer
	exporter := NewExporter(q, testutil.TestLoggerSilent())
	require.NoError(t, exporter.ExportToWriter(context.Background(), fix.ProjectLanguageID, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3) // manifest plus two source files

	var manifest Manifest
	readZipEntry(t, zr, "manifest.json", &manifest)
	assert.Equal(t, ManifestVersion, manifest.Version)
	assert.Equal(t, "Iron Harvest", manifest.Project)
	assert.Equal(t, "iron-harvest", manifest.ProjectSlug)
	assert.Equal(t, "de", manifest.Language)
	assert.Equal(t, []string{"dialogue.json", "menu.json"}, manifest.Files)
	assert.Equal(t, 3, manifest.UnitCount)
	assert.False(t, manifest.ExportedAt.IsZero())

	var dialogue map[string]string
	readZipEntry(t, zr, "files/dialogue.json", &dialogue)
	assert.Equal(t, map[string]string{
		"intro": "[de] Welcome, commander",
		"outro": "[de] Farewell",
	}, dialogue)

	var menu map[string]string
	readZipEntry(t, zr, "files/menu.json", &menu)
	assert.Equal(t, map[string]string{"start": "[de] Start"}, menu)
}

func TestExportEmptyProjectLanguage(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	q := store.New(db)
	ctx := context.Background()

	project, err := q.CreateProject(ctx, store.CreateProjectParams{
		GameID: 11, Name: "Empty Game", Slug: "empty-game",
	})
	require.NoError(t, err)
	lang, err := q.CreateLanguage(ctx, store.CreateLanguageParams{
		Code: "fr", Name: "French", NativeName: "Français", IsActive: true,
	})
	require.NoError(t, err)
	pl, err := q.CreateProjectLanguage(ctx, project.ID, lang.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	exporter := NewExporter(q, testutil.TestLoggerSilent())
	require.NoError(t, exporter.ExportToWriter(ctx, pl.ID, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)

	var manifest Manifest
	readZipEntry(t, zr, "manifest.json", &manifest)
	assert.Empty(t, manifest.Files)
	assert.Zero(t, manifest.UnitCount)
}

func TestExportUnknownProjectLanguage(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	q := store.New(db)

	var buf bytes.Buffer
	exporter := NewExporter(q, testutil.TestLoggerSilent())
	err := exporter.ExportToWriter(context.Background(), 9999, &buf)
	assert.Error(t, err)
}

func TestExportToFile(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	q := store.New(db)
	fix := seedExport(t, q)

	dir := filepath.Join(t.TempDir(), "exports")
	exporter := NewExporter(q, testutil.TestLoggerSilent())
	archivePath, err := exporter.ExportToFile(context.Background(), fix.ProjectLanguageID, dir)
	require.NoError(t, err)

	assert.Equal(t, "Iron_Harvest_de.zip", filepath.Base(archivePath))

	info, err := os.Stat(archivePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	zr, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()
	assert.Len(t, zr.File, 3)
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "Iron_Harvest_de.zip", ArchiveName("Iron Harvest", "de"))
	assert.Equal(t, "Moia_Igra_ru.zip", ArchiveName("Моя Игра", "ru"))
}
