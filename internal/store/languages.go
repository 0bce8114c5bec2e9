// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/lingopack-go/internal/model"
)

const languageColumns = "id, code, name, native_name, is_active, created_at, updated_at"

func scanLanguage(row interface{ Scan(...any) error }) (model.Language, error) {
	var l model.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// CreateLanguageParams holds parameters for CreateLanguage.
type CreateLanguageParams struct {
	Code       string
	Name       string
	NativeName string
	IsActive   bool
}

// CreateLanguage inserts a new language.
func (q *Queries) CreateLanguage(ctx context.Context, arg CreateLanguageParams) (model.Language, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO languages (code, name, native_name, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+languageColumns,
		arg.Code, arg.Name, arg.NativeName, arg.IsActive, now, now)
	return scanLanguage(row)
}

// GetLanguage fetches a language by id.
func (q *Queries) GetLanguage(ctx context.Context, id int64) (model.Language, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+languageColumns+` FROM languages WHERE id = ?`, id)
	return scanLanguage(row)
}

// GetLanguageByCode fetches a language by its ISO 639-1 code.
func (q *Queries) GetLanguageByCode(ctx context.Context, code string) (model.Language, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+languageColumns+` FROM languages WHERE code = ?`, code)
	return scanLanguage(row)
}

// ListLanguages returns all languages ordered by code.
func (q *Queries) ListLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+languageColumns+` FROM languages ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var languages []model.Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		languages = append(languages, l)
	}
	return languages, rows.Err()
}
