// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Language represents a translation target language.
type Language struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`        // ISO 639-1: en, ru, de, fr
	Name       string    `json:"name"`        // English, Russian, German, French
	NativeName string    `json:"native_name"` // English, Русский, Deutsch, Français
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommonLanguages provides a list of commonly used target languages for selection UI.
var CommonLanguages = []struct {
	Code       string
	Name       string
	NativeName string
}{
	{"ru", "Russian", "Русский"},
	{"de", "German", "Deutsch"},
	{"fr", "French", "Français"},
	{"es", "Spanish", "Español"},
	{"it", "Italian", "Italiano"},
	{"pt", "Portuguese", "Português"},
	{"pl", "Polish", "Polski"},
	{"uk", "Ukrainian", "Українська"},
	{"zh", "Chinese", "中文"},
	{"ja", "Japanese", "日本語"},
	{"ko", "Korean", "한국어"},
	{"tr", "Turkish", "Türkçe"},
	{"cs", "Czech", "Čeština"},
	{"hu", "Hungarian", "Magyar"},
}
