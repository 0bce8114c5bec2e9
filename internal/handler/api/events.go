// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// StreamEvents streams batch lifecycle events over Server-Sent Events.
// An optional project_language_id query parameter narrows the stream to one
// project language. Delivery is at-least-once; clients dedupe on the event id.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteInternalError(w, "Streaming is not supported")
		return
	}

	var projectLanguageID int64
	if raw := r.URL.Query().Get("project_language_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			WriteBadRequest(w, "Invalid project_language_id", nil)
			return
		}
		projectLanguageID = id
	}

	sub := h.bus.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case ev, open := <-sub.C:
			if !open {
				return
			}
			if projectLanguageID != 0 && ev.ProjectLanguageID != projectLanguageID {
				continue
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("encoding sse event", "event_id", ev.ID, "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Kind, payload)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// ListEvents returns recent entries from the system event log.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := int64(100)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > 1000 {
			WriteBadRequest(w, "limit must be between 1 and 1000", nil)
			return
		}
		limit = parsed
	}

	events, err := h.queries.ListEvents(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing events", "error", err)
		WriteInternalError(w, "Failed to list events")
		return
	}
	WriteSuccess(w, events, &Meta{Total: int64(len(events))})
}
