// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// slug generation and filename sanitization with Unicode support.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// unsafeFileChars matches characters not allowed in archive filenames
	unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

// Slugify converts a string to a URL-friendly slug: lowercase, accents
// removed, spaces hyphenated, everything else stripped.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}

// FileSafeName transliterates a name to ASCII and strips characters unsafe
// in archive filenames. Project names in any script become portable names
// for exported packs.
func FileSafeName(s string) string {
	result := unidecode.Unidecode(s)
	result = strings.ReplaceAll(result, " ", "_")
	result = unsafeFileChars.ReplaceAllString(result, "")
	result = strings.Trim(result, "._-")
	if result == "" {
		return "pack"
	}
	return result
}
