// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/lingopack-go/internal/pack"
)

// ExportPack streams the translation pack zip for a project language.
func (h *Handler) ExportPack(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		WriteBadRequest(w, "Invalid project language id", nil)
		return
	}

	pl, err := h.queries.GetProjectLanguage(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project language not found")
		} else {
			h.logger.Error("loading project language", "project_language_id", id, "error", err)
			WriteInternalError(w, "Failed to load project language")
		}
		return
	}

	project, err := h.queries.GetProject(r.Context(), pl.ProjectID)
	if err != nil {
		h.logger.Error("loading project", "project_id", pl.ProjectID, "error", err)
		WriteInternalError(w, "Failed to load project")
		return
	}
	lang, err := h.queries.GetLanguage(r.Context(), pl.LanguageID)
	if err != nil {
		h.logger.Error("loading language", "language_id", pl.LanguageID, "error", err)
		WriteInternalError(w, "Failed to load language")
		return
	}

	filename := pack.ArchiveName(project.Name, lang.Code)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	if err := h.exporter.ExportToWriter(r.Context(), id, w); err != nil {
		// Headers are out; all we can do is log.
		h.logger.Error("exporting pack", "project_language_id", id, "error", err)
	}
}
