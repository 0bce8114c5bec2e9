// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/lingopack-go/internal/model"
)

const unitColumns = "id, project_id, source_file, key, source_text, created_at, updated_at"

func scanUnit(row interface{ Scan(...any) error }) (model.Unit, error) {
	var u model.Unit
	err := row.Scan(&u.ID, &u.ProjectID, &u.SourceFile, &u.Key, &u.SourceText, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUnitParams holds parameters for CreateUnit.
type CreateUnitParams struct {
	ProjectID  int64
	SourceFile string
	Key        string
	SourceText string
}

// CreateUnit inserts a translatable content unit.
func (q *Queries) CreateUnit(ctx context.Context, arg CreateUnitParams) (model.Unit, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO units (project_id, source_file, key, source_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+unitColumns,
		arg.ProjectID, arg.SourceFile, arg.Key, arg.SourceText, now, now)
	return scanUnit(row)
}

// GetUnit fetches a unit by id.
func (q *Queries) GetUnit(ctx context.Context, id int64) (model.Unit, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = ?`, id)
	return scanUnit(row)
}

// ListUnitsByIDs fetches units by id, in no particular order.
func (q *Queries) ListUnitsByIDs(ctx context.Context, ids []int64) ([]model.Unit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT `+unitColumns+` FROM units WHERE id IN (%s)`, placeholders(len(ids)))
	rows, err := q.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var units []model.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// ListUntranslatedUnitIDs returns the ids of all units of the project that
// have no stored translation for the given project language, ordered by
// source file then key for a deterministic dispatch sequence.
func (q *Queries) ListUntranslatedUnitIDs(ctx context.Context, projectLanguageID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT u.id
		FROM units u
		JOIN project_languages pl ON pl.project_id = u.project_id
		LEFT JOIN unit_translations ut ON ut.unit_id = u.id AND ut.project_language_id = pl.id
		WHERE pl.id = ? AND ut.id IS NULL
		ORDER BY u.source_file, u.key`, projectLanguageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectIDs(rows)
}

// FilterUntranslatedUnitIDs narrows a candidate id list to the units still
// lacking a translation for the project language. Input order is preserved.
func (q *Queries) FilterUntranslatedUnitIDs(ctx context.Context, ids []int64, projectLanguageID int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT u.id
		FROM units u
		LEFT JOIN unit_translations ut ON ut.unit_id = u.id AND ut.project_language_id = ?
		WHERE u.id IN (%s) AND ut.id IS NULL`, placeholders(len(ids)))
	args := append([]any{projectLanguageID}, int64Args(ids)...)
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	remaining, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}
	keep := make(map[int64]bool, len(remaining))
	for _, id := range remaining {
		keep[id] = true
	}
	filtered := make([]int64, 0, len(remaining))
	for _, id := range ids {
		if keep[id] {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// UpsertUnitTranslationParams holds parameters for UpsertUnitTranslation.
type UpsertUnitTranslationParams struct {
	UnitID            int64
	ProjectLanguageID int64
	Text              string
}

// UpsertUnitTranslation stores or replaces the translation of a unit for a
// project language.
func (q *Queries) UpsertUnitTranslation(ctx context.Context, arg UpsertUnitTranslationParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO unit_translations (unit_id, project_language_id, text, translated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (unit_id, project_language_id)
		DO UPDATE SET text = excluded.text, translated_at = excluded.translated_at`,
		arg.UnitID, arg.ProjectLanguageID, arg.Text, time.Now())
	return err
}

// TranslatedUnit joins a unit with its stored translation.
type TranslatedUnit struct {
	Unit model.Unit
	Text string
}

// ListTranslatedUnits returns the units of a project language that have a
// stored translation, ordered by source file then key.
func (q *Queries) ListTranslatedUnits(ctx context.Context, projectLanguageID int64) ([]TranslatedUnit, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+qualifiedUnitColumns("u")+`, ut.text
		FROM units u
		JOIN unit_translations ut ON ut.unit_id = u.id
		WHERE ut.project_language_id = ?
		ORDER BY u.source_file, u.key`, projectLanguageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []TranslatedUnit
	for rows.Next() {
		var tu TranslatedUnit
		if err := rows.Scan(&tu.Unit.ID, &tu.Unit.ProjectID, &tu.Unit.SourceFile, &tu.Unit.Key,
			&tu.Unit.SourceText, &tu.Unit.CreatedAt, &tu.Unit.UpdatedAt, &tu.Text); err != nil {
			return nil, err
		}
		out = append(out, tu)
	}
	return out, rows.Err()
}

// ListRecentTranslations returns up to limit prior translations for a project
// language, newest first. Used as translation-memory hints.
func (q *Queries) ListRecentTranslations(ctx context.Context, projectLanguageID int64, limit int64) ([]TranslatedUnit, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+qualifiedUnitColumns("u")+`, ut.text
		FROM units u
		JOIN unit_translations ut ON ut.unit_id = u.id
		WHERE ut.project_language_id = ?
		ORDER BY ut.translated_at DESC
		LIMIT ?`, projectLanguageID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []TranslatedUnit
	for rows.Next() {
		var tu TranslatedUnit
		if err := rows.Scan(&tu.Unit.ID, &tu.Unit.ProjectID, &tu.Unit.SourceFile, &tu.Unit.Key,
			&tu.Unit.SourceText, &tu.Unit.CreatedAt, &tu.Unit.UpdatedAt, &tu.Text); err != nil {
			return nil, err
		}
		out = append(out, tu)
	}
	return out, rows.Err()
}

func qualifiedUnitColumns(alias string) string {
	cols := strings.Split(unitColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func collectIDs(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
