// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/olegiv/lingopack-go/internal/model"
)

// CreateGlossaryParams holds parameters for CreateGlossary.
type CreateGlossaryParams struct {
	GameID       sql.NullInt64 // null = universal glossary
	LanguageCode string
	Name         string
}

// CreateGlossary inserts a new glossary.
func (q *Queries) CreateGlossary(ctx context.Context, arg CreateGlossaryParams) (model.Glossary, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO glossaries (game_id, language_code, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, game_id, language_code, name, created_at, updated_at`,
		arg.GameID, arg.LanguageCode, arg.Name, now, now)
	var g model.Glossary
	err := row.Scan(&g.ID, &g.GameID, &g.LanguageCode, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// ListGlossariesForGame returns the glossaries applicable to a game and
// target language: game-scoped glossaries for that game plus universal ones.
func (q *Queries) ListGlossariesForGame(ctx context.Context, gameID int64, languageCode string) ([]model.Glossary, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, game_id, language_code, name, created_at, updated_at
		FROM glossaries
		WHERE language_code = ? AND (game_id = ? OR game_id IS NULL)
		ORDER BY game_id IS NULL, id`, languageCode, gameID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var glossaries []model.Glossary
	for rows.Next() {
		var g model.Glossary
		if err := rows.Scan(&g.ID, &g.GameID, &g.LanguageCode, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		glossaries = append(glossaries, g)
	}
	return glossaries, rows.Err()
}

// CreateGlossaryTermParams holds parameters for CreateGlossaryTerm.
type CreateGlossaryTermParams struct {
	GlossaryID int64
	Source     string
	Target     string
	Variants   []string
}

// CreateGlossaryTerm inserts a term. Variants are stored as a JSON array.
func (q *Queries) CreateGlossaryTerm(ctx context.Context, arg CreateGlossaryTermParams) (model.GlossaryTerm, error) {
	variants := arg.Variants
	if variants == nil {
		variants = []string{}
	}
	data, err := json.Marshal(variants)
	if err != nil {
		return model.GlossaryTerm{}, err
	}
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO glossary_terms (glossary_id, source, target, variants)
		VALUES (?, ?, ?, ?)
		RETURNING id, glossary_id, source, target, variants`,
		arg.GlossaryID, arg.Source, arg.Target, string(data))
	return scanGlossaryTerm(row)
}

func scanGlossaryTerm(row interface{ Scan(...any) error }) (model.GlossaryTerm, error) {
	var t model.GlossaryTerm
	var variants string
	if err := row.Scan(&t.ID, &t.GlossaryID, &t.Source, &t.Target, &variants); err != nil {
		return t, err
	}
	if variants != "" && variants != "[]" {
		_ = json.Unmarshal([]byte(variants), &t.Variants)
	}
	return t, nil
}

// ListGlossaryTerms returns all terms of a glossary including variant forms.
func (q *Queries) ListGlossaryTerms(ctx context.Context, glossaryID int64) ([]model.GlossaryTerm, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, glossary_id, source, target, variants
		FROM glossary_terms WHERE glossary_id = ? ORDER BY id`, glossaryID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var terms []model.GlossaryTerm
	for rows.Next() {
		t, err := scanGlossaryTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}
