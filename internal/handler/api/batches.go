// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/lingopack-go/internal/engine"
	"github.com/olegiv/lingopack-go/internal/model"
)

// BatchResponse is the API shape of a translation batch.
type BatchResponse struct {
	ID                int64      `json:"id"`
	ProjectLanguageID int64      `json:"project_language_id"`
	ProviderID        string     `json:"provider_id"`
	BatchNumber       int64      `json:"batch_number"`
	UnitCount         int64      `json:"unit_count"`
	Status            string     `json:"status"`
	RetryCount        int64      `json:"retry_count"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`

	Running        bool  `json:"running"`
	PendingUnits   int64 `json:"pending_units"`
	CompletedUnits int64 `json:"completed_units"`
	FailedUnits    int64 `json:"failed_units"`
}

func (h *Handler) batchResponse(r *http.Request, batch model.TranslationBatch) BatchResponse {
	resp := BatchResponse{
		ID:                batch.ID,
		ProjectLanguageID: batch.ProjectLanguageID,
		ProviderID:        batch.ProviderID,
		BatchNumber:       batch.BatchNumber,
		UnitCount:         batch.UnitCount,
		Status:            string(batch.Status),
		RetryCount:        batch.RetryCount,
		CreatedAt:         batch.CreatedAt,
		Running:           h.controller.Running(batch.ID),
	}
	if batch.ErrorMessage.Valid {
		resp.ErrorMessage = batch.ErrorMessage.String
	}
	if batch.StartedAt.Valid {
		t := batch.StartedAt.Time
		resp.StartedAt = &t
	}
	if batch.CompletedAt.Valid {
		t := batch.CompletedAt.Time
		resp.CompletedAt = &t
	}

	counts, err := h.queries.CountBatchUnitsByStatus(r.Context(), batch.ID)
	if err != nil {
		h.logger.Error("counting batch units", "batch_id", batch.ID, "error", err)
		return resp
	}
	resp.PendingUnits = counts[model.UnitStatusPending]
	resp.CompletedUnits = counts[model.UnitStatusCompleted]
	resp.FailedUnits = counts[model.UnitStatusFailed]
	return resp
}

// StartBatchRequest is the body of POST /api/batches.
type StartBatchRequest struct {
	ProjectLanguageID int64  `json:"project_language_id"`
	ProviderID        string `json:"provider_id"`
	ModelID           string `json:"model_id,omitempty"`

	// UnitIDs optionally restricts the batch to explicit units in the
	// given processing order. Omitted = all untranslated units.
	UnitIDs []int64 `json:"unit_ids,omitempty"`

	MaxUnits      int  `json:"max_units,omitempty"`
	UnitsPerBatch int  `json:"units_per_batch,omitempty"`
	SkipMemory    bool `json:"skip_memory,omitempty"`
}

// StartBatch plans a batch and starts executing it.
func (h *Handler) StartBatch(w http.ResponseWriter, r *http.Request) {
	var req StartBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.ProjectLanguageID == 0 || req.ProviderID == "" {
		WriteBadRequest(w, "project_language_id and provider_id are required", nil)
		return
	}

	plan, err := h.planner.Plan(r.Context(), engine.PlanParams{
		ProjectLanguageID: req.ProjectLanguageID,
		ProviderID:        req.ProviderID,
		UnitIDs:           req.UnitIDs,
		MaxUnits:          req.MaxUnits,
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNoUnits):
			WriteConflict(w, "No untranslated units for this project language")
		case errors.Is(err, engine.ErrDuplicateUnits):
			WriteBadRequest(w, "unit_ids contains duplicates", nil)
		default:
			h.logger.Error("planning batch", "error", err)
			WriteInternalError(w, "Failed to plan batch")
		}
		return
	}

	tc := h.builder.Build(r.Context(), engine.BuildParams{
		ProjectLanguageID: req.ProjectLanguageID,
		ProviderID:        req.ProviderID,
		ModelID:           req.ModelID,
		UnitsPerBatch:     req.UnitsPerBatch,
		SkipMemory:        req.SkipMemory,
	})

	if err := h.controller.Start(r.Context(), plan.Batch.ID, tc); err != nil {
		if errors.Is(err, engine.ErrAlreadyRunning) {
			WriteConflict(w, "A batch for this project language is already running")
			return
		}
		h.logger.Error("starting batch", "batch_id", plan.Batch.ID, "error", err)
		WriteInternalError(w, "Failed to start batch")
		return
	}

	WriteAccepted(w, h.batchResponse(r, plan.Batch))
}

// GetBatch returns one batch with its unit counts.
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.requireBatch(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, h.batchResponse(r, batch), nil)
}

// ListBatches returns the batches of a project language, newest first.
func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	projectLanguageID, err := strconv.ParseInt(r.URL.Query().Get("project_language_id"), 10, 64)
	if err != nil || projectLanguageID < 1 {
		WriteBadRequest(w, "project_language_id query parameter is required", nil)
		return
	}

	batches, err := h.queries.ListBatchesByProjectLanguage(r.Context(), projectLanguageID)
	if err != nil {
		h.logger.Error("listing batches", "project_language_id", projectLanguageID, "error", err)
		WriteInternalError(w, "Failed to list batches")
		return
	}

	responses := make([]BatchResponse, len(batches))
	for i, b := range batches {
		responses[i] = h.batchResponse(r, b)
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// PauseBatch pauses a running batch at the next chunk boundary.
func (h *Handler) PauseBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.requireBatch(w, r)
	if !ok {
		return
	}
	if err := h.controller.Pause(batch.ID); err != nil {
		if errors.Is(err, engine.ErrNotRunning) {
			WriteConflict(w, "Batch is not running")
			return
		}
		WriteInternalError(w, "Failed to pause batch")
		return
	}
	WriteSuccess(w, h.batchResponse(r, batch), nil)
}

// ResumeBatch lifts a pause.
func (h *Handler) ResumeBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.requireBatch(w, r)
	if !ok {
		return
	}
	if err := h.controller.Resume(batch.ID); err != nil {
		if errors.Is(err, engine.ErrNotRunning) {
			WriteConflict(w, "Batch is not running")
			return
		}
		WriteInternalError(w, "Failed to resume batch")
		return
	}
	WriteSuccess(w, h.batchResponse(r, batch), nil)
}

// CancelBatchRequest is the body of POST /api/batches/{id}/cancel.
type CancelBatchRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CancelBatch cancels a pending or running batch.
func (h *Handler) CancelBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.requireBatch(w, r)
	if !ok {
		return
	}

	var req CancelBatchRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.controller.Cancel(r.Context(), batch.ID, req.Reason); err != nil {
		WriteConflict(w, err.Error())
		return
	}
	WriteAccepted(w, h.batchResponse(r, batch))
}

// RetryBatch re-executes a failed batch from its first non-completed unit.
func (h *Handler) RetryBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.requireBatch(w, r)
	if !ok {
		return
	}

	tc := h.builder.Build(r.Context(), engine.BuildParams{
		ProjectLanguageID: batch.ProjectLanguageID,
		ProviderID:        batch.ProviderID,
	})

	if err := h.controller.Retry(r.Context(), batch.ID, tc); err != nil {
		switch {
		case errors.Is(err, engine.ErrRetryExhausted):
			WriteConflict(w, "Batch retry budget exhausted")
		case errors.Is(err, engine.ErrNotRetryable):
			WriteConflict(w, "Batch is not in a retryable state")
		case errors.Is(err, engine.ErrAlreadyRunning):
			WriteConflict(w, "A batch for this project language is already running")
		default:
			h.logger.Error("retrying batch", "batch_id", batch.ID, "error", err)
			WriteInternalError(w, "Failed to retry batch")
		}
		return
	}
	WriteAccepted(w, h.batchResponse(r, batch))
}

// BatchUnitResponse is the API shape of one unit assignment.
type BatchUnitResponse struct {
	UnitID          int64  `json:"unit_id"`
	ProcessingOrder int64  `json:"processing_order"`
	Status          string `json:"status"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

// ListBatchUnits returns the unit assignments of a batch in processing order.
func (h *Handler) ListBatchUnits(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.requireBatch(w, r)
	if !ok {
		return
	}

	units, err := h.queries.ListBatchUnits(r.Context(), batch.ID)
	if err != nil {
		h.logger.Error("listing batch units", "batch_id", batch.ID, "error", err)
		WriteInternalError(w, "Failed to list batch units")
		return
	}

	responses := make([]BatchUnitResponse, len(units))
	for i, u := range units {
		responses[i] = BatchUnitResponse{
			UnitID:          u.UnitID,
			ProcessingOrder: u.ProcessingOrder,
			Status:          string(u.Status),
		}
		if u.ErrorMessage.Valid {
			responses[i].ErrorMessage = u.ErrorMessage.String
		}
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// ListBatchEvents returns the persisted lifecycle events of a batch.
func (h *Handler) ListBatchEvents(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.requireBatch(w, r)
	if !ok {
		return
	}

	events, err := h.queries.ListBatchEvents(r.Context(), batch.ID)
	if err != nil {
		h.logger.Error("listing batch events", "batch_id", batch.ID, "error", err)
		WriteInternalError(w, "Failed to list batch events")
		return
	}
	WriteSuccess(w, events, &Meta{Total: int64(len(events))})
}

// requireBatch loads the batch named by the id path parameter, writing the
// error response on failure.
func (h *Handler) requireBatch(w http.ResponseWriter, r *http.Request) (model.TranslationBatch, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		WriteBadRequest(w, "Invalid batch id", nil)
		return model.TranslationBatch{}, false
	}

	batch, err := h.queries.GetBatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Batch not found")
		} else {
			h.logger.Error("loading batch", "batch_id", id, "error", err)
			WriteInternalError(w, "Failed to load batch")
		}
		return model.TranslationBatch{}, false
	}
	return batch, true
}
