// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/lingopack-go/internal/model"
)

const projectColumns = "id, game_id, name, slug, created_at, updated_at"

func scanProject(row interface{ Scan(...any) error }) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.GameID, &p.Name, &p.Slug, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateProjectParams holds parameters for CreateProject.
type CreateProjectParams struct {
	GameID int64
	Name   string
	Slug   string
}

// CreateProject inserts a new project.
func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (model.Project, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO projects (game_id, name, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+projectColumns,
		arg.GameID, arg.Name, arg.Slug, now, now)
	return scanProject(row)
}

// GetProject fetches a project by id.
func (q *Queries) GetProject(ctx context.Context, id int64) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// ListProjects returns all projects ordered by name.
func (q *Queries) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateProjectLanguage links a project to a target language.
func (q *Queries) CreateProjectLanguage(ctx context.Context, projectID, languageID int64) (model.ProjectLanguage, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO project_languages (project_id, language_id, created_at)
		VALUES (?, ?, ?)
		RETURNING id, project_id, language_id, created_at`,
		projectID, languageID, time.Now())
	var pl model.ProjectLanguage
	err := row.Scan(&pl.ID, &pl.ProjectID, &pl.LanguageID, &pl.CreatedAt)
	return pl, err
}

// GetProjectLanguage fetches a project language by id.
func (q *Queries) GetProjectLanguage(ctx context.Context, id int64) (model.ProjectLanguage, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, project_id, language_id, created_at FROM project_languages WHERE id = ?`, id)
	var pl model.ProjectLanguage
	err := row.Scan(&pl.ID, &pl.ProjectID, &pl.LanguageID, &pl.CreatedAt)
	return pl, err
}

// ListProjectLanguages returns the language pairs of a project.
func (q *Queries) ListProjectLanguages(ctx context.Context, projectID int64) ([]model.ProjectLanguage, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, project_id, language_id, created_at
		FROM project_languages WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pls []model.ProjectLanguage
	for rows.Next() {
		var pl model.ProjectLanguage
		if err := rows.Scan(&pl.ID, &pl.ProjectID, &pl.LanguageID, &pl.CreatedAt); err != nil {
			return nil, err
		}
		pls = append(pls, pl)
	}
	return pls, rows.Err()
}

// DeleteProjectLanguage removes a project language. Batches, batch units and
// translations owned by it are cascade-deleted.
func (q *Queries) DeleteProjectLanguage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM project_languages WHERE id = ?`, id)
	return err
}
