// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/lingopack-go/internal/model"
	"github.com/olegiv/lingopack-go/internal/store"
)

// Planner creates batches: a header row with an atomically assigned batch
// number, plus one unit row per candidate in processing order.
type Planner struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewPlanner creates a planner.
func NewPlanner(queries *store.Queries, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{queries: queries, logger: logger}
}

// PlanParams carries the input of one planning request.
type PlanParams struct {
	ProjectLanguageID int64
	ProviderID        string

	// UnitIDs optionally names explicit candidates in the desired
	// processing order. Nil plans all untranslated units of the project
	// language. Already translated candidates are silently skipped.
	UnitIDs []int64

	// MaxUnits caps the batch size. 0 = no cap.
	MaxUnits int
}

// Plan is the result of a successful planning request.
type Plan struct {
	Batch   model.TranslationBatch
	UnitIDs []int64 // in processing order
}

// Plan creates one batch. Returns ErrNoUnits when nothing needs translation
// and ErrDuplicateUnits when explicit candidates repeat.
//
// The header and the unit rows are two separate writes. If the unit insert
// fails after the header landed, the batch is marked failed and left in
// place rather than rolled back: the numbered header is the audit record of
// the attempt, and a failed empty batch can never be executed.
func (p *Planner) Plan(ctx context.Context, params PlanParams) (*Plan, error) {
	unitIDs, err := p.resolveCandidates(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(unitIDs) == 0 {
		return nil, ErrNoUnits
	}
	if params.MaxUnits > 0 && len(unitIDs) > params.MaxUnits {
		unitIDs = unitIDs[:params.MaxUnits]
	}

	batch, err := p.queries.CreateBatch(ctx, store.CreateBatchParams{
		ProjectLanguageID: params.ProjectLanguageID,
		ProviderID:        params.ProviderID,
		UnitCount:         int64(len(unitIDs)),
	})
	if err != nil {
		return nil, fmt.Errorf("creating batch header: %w", err)
	}

	if err := p.queries.CreateBatchUnits(ctx, batch.ID, unitIDs); err != nil {
		p.logger.Error("batch unit insert failed, marking batch invalid",
			"batch_id", batch.ID, "batch_number", batch.BatchNumber, "error", err)
		p.invalidate(ctx, batch.ID, err)
		return nil, fmt.Errorf("batch %d: %w: %w", batch.ID, ErrBatchInvalid, err)
	}

	p.logger.Info("batch planned",
		"batch_id", batch.ID,
		"batch_number", batch.BatchNumber,
		"project_language_id", params.ProjectLanguageID,
		"provider", params.ProviderID,
		"units", len(unitIDs))

	return &Plan{Batch: batch, UnitIDs: unitIDs}, nil
}

func (p *Planner) resolveCandidates(ctx context.Context, params PlanParams) ([]int64, error) {
	if params.UnitIDs == nil {
		ids, err := p.queries.ListUntranslatedUnitIDs(ctx, params.ProjectLanguageID)
		if err != nil {
			return nil, fmt.Errorf("listing untranslated units: %w", err)
		}
		return ids, nil
	}

	seen := make(map[int64]bool, len(params.UnitIDs))
	for _, id := range params.UnitIDs {
		if seen[id] {
			return nil, fmt.Errorf("unit %d: %w", id, ErrDuplicateUnits)
		}
		seen[id] = true
	}

	ids, err := p.queries.FilterUntranslatedUnitIDs(ctx, params.UnitIDs, params.ProjectLanguageID)
	if err != nil {
		return nil, fmt.Errorf("filtering candidate units: %w", err)
	}
	return ids, nil
}

// invalidate exhausts the retry budget so the broken batch can never run.
func (p *Planner) invalidate(ctx context.Context, batchID int64, cause error) {
	err := p.queries.MarkBatchFailed(ctx, store.MarkBatchFailedParams{
		ID:           batchID,
		ErrorMessage: fmt.Sprintf("planning: %v", cause),
		RetryCount:   model.MaxBatchRetries,
	})
	if err != nil {
		p.logger.Error("marking invalid batch failed", "batch_id", batchID, "error", err)
	}
}
