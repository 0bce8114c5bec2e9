// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Unit is one translatable piece of content: a string with a stable key,
// imported from a source file of the mod.
type Unit struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	SourceFile string    `json:"source_file"`
	Key        string    `json:"key"`
	SourceText string    `json:"source_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UnitTranslation is the stored translation of a unit for one project
// language. Rows double as the translation memory: prior translations are
// attached as hints to later provider requests unless the context skips them.
type UnitTranslation struct {
	ID                int64     `json:"id"`
	UnitID            int64     `json:"unit_id"`
	ProjectLanguageID int64     `json:"project_language_id"`
	Text              string    `json:"text"`
	TranslatedAt      time.Time `json:"translated_at"`
}
