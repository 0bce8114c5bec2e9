// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Project is one game modification under localization. GameID references
// the game installation the mod belongs to; it scopes glossary lookups.
type Project struct {
	ID        int64     `json:"id"`
	GameID    int64     `json:"game_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectLanguage pairs a project with one target language. It owns the
// project's batches for that language; deleting it cascades to them.
type ProjectLanguage struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	LanguageID int64     `json:"language_id"`
	CreatedAt  time.Time `json:"created_at"`
}
