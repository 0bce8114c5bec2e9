// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pack builds distributable translation packs: zip archives with
// one JSON file per source file plus a manifest.
package pack

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/olegiv/lingopack-go/internal/store"
	"github.com/olegiv/lingopack-go/internal/util"
)

// ManifestVersion is the pack format version.
const ManifestVersion = 1

// Manifest describes a translation pack.
type Manifest struct {
	Version     int       `json:"version"`
	Project     string    `json:"project"`
	ProjectSlug string    `json:"project_slug"`
	Language    string    `json:"language"`
	Files       []string  `json:"files"`
	UnitCount   int       `json:"unit_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Exporter writes translation packs for a project language.
type Exporter struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewExporter creates an exporter.
func NewExporter(queries *store.Queries, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{queries: queries, logger: logger}
}

// ExportToWriter writes the pack zip for a project language. Only units with
// a stored translation are included; an untranslated project language yields
// a pack with an empty file list.
func (e *Exporter) ExportToWriter(ctx context.Context, projectLanguageID int64, w io.Writer) error {
	pl, err := e.queries.GetProjectLanguage(ctx, projectLanguageID)
	if err != nil {
		return fmt.Errorf("loading project language: %w", err)
	}
	project, err := e.queries.GetProject(ctx, pl.ProjectID)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}
	lang, err := e.queries.GetLanguage(ctx, pl.LanguageID)
	if err != nil {
		return fmt.Errorf("loading language: %w", err)
	}

	translated, err := e.queries.ListTranslatedUnits(ctx, projectLanguageID)
	if err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}

	// Rows come ordered by source file then key; group preserving order.
	var files []string
	byFile := make(map[string]map[string]string)
	for _, tu := range translated {
		entries, ok := byFile[tu.Unit.SourceFile]
		if !ok {
			entries = make(map[string]string)
			byFile[tu.Unit.SourceFile] = entries
			files = append(files, tu.Unit.SourceFile)
		}
		entries[tu.Unit.Key] = tu.Text
	}

	manifest := Manifest{
		Version:     ManifestVersion,
		Project:     project.Name,
		ProjectSlug: project.Slug,
		Language:    lang.Code,
		Files:       files,
		UnitCount:   len(translated),
		ExportedAt:  time.Now().UTC(),
	}

	zipWriter := zip.NewWriter(w)
	defer func() { _ = zipWriter.Close() }()

	if err := writeJSONEntry(zipWriter, "manifest.json", manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	for _, file := range files {
		entry := path.Join("files", file)
		if err := writeJSONEntry(zipWriter, entry, byFile[file]); err != nil {
			return fmt.Errorf("writing %s: %w", entry, err)
		}
	}

	e.logger.Info("translation pack exported",
		"project", project.Slug,
		"language", lang.Code,
		"files", len(files),
		"units", len(translated))
	return zipWriter.Close()
}

// ExportToFile writes the pack into dir and returns the archive path.
func (e *Exporter) ExportToFile(ctx context.Context, projectLanguageID int64, dir string) (string, error) {
	pl, err := e.queries.GetProjectLanguage(ctx, projectLanguageID)
	if err != nil {
		return "", fmt.Errorf("loading project language: %w", err)
	}
	project, err := e.queries.GetProject(ctx, pl.ProjectID)
	if err != nil {
		return "", fmt.Errorf("loading project: %w", err)
	}
	lang, err := e.queries.GetLanguage(ctx, pl.LanguageID)
	if err != nil {
		return "", fmt.Errorf("loading language: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	archivePath := filepath.Join(dir, ArchiveName(project.Name, lang.Code))
	f, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := e.ExportToWriter(ctx, projectLanguageID, f); err != nil {
		return "", err
	}
	return archivePath, nil
}

// ArchiveName builds a portable archive filename from a project name that
// may be in any script.
func ArchiveName(projectName, langCode string) string {
	return fmt.Sprintf("%s_%s.zip", util.FileSafeName(projectName), langCode)
}

func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	entry, err := zw.Create(name)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(entry)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
