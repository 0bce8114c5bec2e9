// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/olegiv/lingopack-go/internal/cache"
	"github.com/olegiv/lingopack-go/internal/model"
	"github.com/olegiv/lingopack-go/internal/store"
)

// ContextBuilder assembles the immutable translation context for a batch
// run. Build never fails: anything that cannot be resolved degrades to a
// safe default (the fallback target language, no glossary) and is logged,
// so a misconfigured glossary can never block translation.
type ContextBuilder struct {
	queries    *store.Queries
	languages  *cache.LanguageCache
	glossaries *cache.GlossaryCache
	logger     *slog.Logger
}

// NewContextBuilder creates a context builder.
func NewContextBuilder(queries *store.Queries, languages *cache.LanguageCache, glossaries *cache.GlossaryCache, logger *slog.Logger) *ContextBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextBuilder{
		queries:    queries,
		languages:  languages,
		glossaries: glossaries,
		logger:     logger,
	}
}

// BuildParams carries the per-run configuration for Build.
type BuildParams struct {
	ProjectLanguageID int64
	ProviderID        string
	ModelID           string
	UnitsPerBatch     int // 0 = engine default chunk size
	ParallelBatches   int
	SkipMemory        bool
}

// Build resolves the project language, target language and glossary into a
// fresh context. Contexts are never mutated after Build; a configuration
// change requires a new context and a new batch.
func (b *ContextBuilder) Build(ctx context.Context, params BuildParams) *model.TranslationContext {
	now := time.Now()
	tc := &model.TranslationContext{
		ID:                uuid.NewString(),
		ProjectLanguageID: params.ProjectLanguageID,
		ProviderID:        params.ProviderID,
		ModelID:           params.ModelID,
		SourceLanguage:    model.SourceLanguageCode,
		TargetLanguage:    model.DefaultTargetLanguage,
		UnitsPerBatch:     params.UnitsPerBatch,
		ParallelBatches:   params.ParallelBatches,
		SkipMemory:        params.SkipMemory,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	pl, err := b.queries.GetProjectLanguage(ctx, params.ProjectLanguageID)
	if err != nil {
		b.logger.Warn("context degraded: project language not resolvable",
			"project_language_id", params.ProjectLanguageID, "error", err)
		return tc
	}
	tc.ProjectID = pl.ProjectID

	langCode := b.resolveTargetLanguage(ctx, pl.LanguageID, tc)

	project, err := b.queries.GetProject(ctx, pl.ProjectID)
	if err != nil {
		b.logger.Warn("context degraded: project not resolvable, skipping glossary",
			"project_id", pl.ProjectID, "error", err)
		return tc
	}

	b.resolveGlossary(ctx, project.GameID, langCode, tc)
	return tc
}

// resolveTargetLanguage looks up the target language and returns its lower
// case ISO code; the context keeps the uppercased form the providers expect.
func (b *ContextBuilder) resolveTargetLanguage(ctx context.Context, languageID int64, tc *model.TranslationContext) string {
	lang, err := b.languages.GetByID(ctx, languageID)
	if err != nil || lang == nil {
		b.logger.Warn("context degraded: target language not resolvable",
			"language_id", languageID, "error", err)
		return ""
	}

	if _, parseErr := language.Parse(lang.Code); parseErr != nil {
		b.logger.Warn("context degraded: invalid language code",
			"language_id", languageID, "code", lang.Code, "error", parseErr)
		return ""
	}

	tc.TargetLanguage = strings.ToUpper(lang.Code)
	return lang.Code
}

func (b *ContextBuilder) resolveGlossary(ctx context.Context, gameID int64, langCode string, tc *model.TranslationContext) {
	if langCode == "" {
		return
	}

	resolved, err := b.glossaries.ResolveForGame(ctx, gameID, langCode)
	if err != nil {
		b.logger.Warn("context degraded: glossary not resolvable, continuing without",
			"game_id", gameID, "language", langCode, "error", err)
		return
	}
	if resolved.GlossaryID == 0 {
		return
	}

	tc.GlossaryID = resolved.GlossaryID
	tc.Terms = resolved.Terms
	b.logger.Debug("glossary attached to context",
		"context_id", tc.ID, "glossary_id", resolved.GlossaryID, "terms", len(resolved.Terms))
}
