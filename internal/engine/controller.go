// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/olegiv/lingopack-go/internal/model"
	"github.com/olegiv/lingopack-go/internal/provider"
	"github.com/olegiv/lingopack-go/internal/store"
)

const (
	// DefaultChunkSize is the number of units per provider call when the
	// context does not set one.
	DefaultChunkSize = 10

	// memoryHintLimit caps the prior translations attached to a request.
	memoryHintLimit = 20

	// defaultPoolSize bounds concurrently executing batch runs.
	defaultPoolSize = 4
)

// Controller executes planned batches. One batch run is a goroutine from a
// shared worker pool that dispatches units to the provider in chunks and
// checks the pause gate and cancel flag between chunks, so pause and cancel
// take effect at the next chunk boundary while in-flight calls complete and
// keep their results.
//
// At most one batch per project language runs at a time; batches of
// different project languages run in parallel up to the pool size.
type Controller struct {
	queries  *store.Queries
	registry *provider.Registry
	bus      *Bus
	logger   *slog.Logger
	pool     *ants.Pool

	// lifecycle outlives the caller's request contexts; Close cancels it
	// to stop all runs on shutdown.
	lifecycle context.Context
	shutdown  context.CancelFunc

	mu   sync.Mutex
	runs map[int64]*run  // batch id -> active run
	byPL map[int64]int64 // project language id -> running batch id
}

// run is the in-memory state of one executing batch.
type run struct {
	ctx    context.Context
	batch  model.TranslationBatch
	tc     *model.TranslationContext
	ledger *Ledger

	mu       sync.Mutex
	paused   bool
	resumeCh chan struct{}

	cancelled    atomic.Bool
	cancelReason string

	startedAt time.Time
	done      chan struct{}
}

// NewController creates a controller with a worker pool of the given size.
// A non-positive size uses the default.
func NewController(queries *store.Queries, registry *provider.Registry, bus *Bus, logger *slog.Logger, poolSize int) (*Controller, error) {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	lifecycle, shutdown := context.WithCancel(context.Background())
	return &Controller{
		queries:   queries,
		registry:  registry,
		bus:       bus,
		logger:    logger,
		pool:      pool,
		lifecycle: lifecycle,
		shutdown:  shutdown,
		runs:      make(map[int64]*run),
		byPL:      make(map[int64]int64),
	}, nil
}

// Close cancels active runs and releases the pool.
func (c *Controller) Close() {
	c.shutdown()
	c.pool.Release()
}

// Start executes a pending batch asynchronously. Returns ErrAlreadyRunning
// when a batch of the same project language is active.
func (c *Controller) Start(ctx context.Context, batchID int64, tc *model.TranslationContext) error {
	batch, err := c.queries.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("loading batch %d: %w", batchID, err)
	}
	if batch.Status != model.BatchStatusPending {
		return fmt.Errorf("batch %d is %s, expected %s", batchID, batch.Status, model.BatchStatusPending)
	}
	return c.launch(ctx, batch, tc)
}

// Retry re-executes a failed batch, resuming from the first unit that never
// completed. Completed units keep their translations.
func (c *Controller) Retry(ctx context.Context, batchID int64, tc *model.TranslationContext) error {
	batch, err := c.queries.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("loading batch %d: %w", batchID, err)
	}
	if batch.Status != model.BatchStatusFailed {
		return fmt.Errorf("batch %d is %s: %w", batchID, batch.Status, ErrNotRetryable)
	}
	if !batch.CanRetry() {
		return fmt.Errorf("batch %d after %d attempts: %w", batchID, batch.RetryCount, ErrRetryExhausted)
	}
	return c.launch(ctx, batch, tc)
}

func (c *Controller) launch(ctx context.Context, batch model.TranslationBatch, tc *model.TranslationContext) error {
	units, err := c.queries.ListBatchUnits(ctx, batch.ID)
	if err != nil {
		return fmt.Errorf("loading batch units: %w", err)
	}

	// The run outlives the caller's request; only controller shutdown
	// cancels it.
	r := &run{
		ctx:       c.lifecycle,
		batch:     batch,
		tc:        tc,
		ledger:    NewLedger(batch.ID, units),
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}

	c.mu.Lock()
	if runningID, busy := c.byPL[batch.ProjectLanguageID]; busy {
		c.mu.Unlock()
		return fmt.Errorf("batch %d active: %w", runningID, ErrAlreadyRunning)
	}
	c.runs[batch.ID] = r
	c.byPL[batch.ProjectLanguageID] = batch.ID
	c.mu.Unlock()

	if err := c.queries.MarkBatchTranslating(ctx, batch.ID); err != nil {
		c.unregister(r)
		return fmt.Errorf("marking batch translating: %w", err)
	}

	c.emit(r, EventBatchStarted, nil)

	if err := c.pool.Submit(func() { c.execute(r) }); err != nil {
		c.unregister(r)
		c.failBatch(r, fmt.Errorf("submitting batch run: %w", err))
		return fmt.Errorf("submitting batch run: %w", err)
	}

	c.logger.Info("batch run started",
		"batch_id", batch.ID,
		"batch_number", batch.BatchNumber,
		"project_language_id", batch.ProjectLanguageID,
		"provider", tc.ProviderID,
		"units", r.ledger.Total(),
		"retry_count", batch.RetryCount)
	return nil
}

// Pause requests a pause at the next chunk boundary. Pausing a paused batch
// is a no-op.
func (c *Controller) Pause(batchID int64) error {
	r, err := c.activeRun(batchID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.paused {
		r.mu.Unlock()
		return nil
	}
	r.paused = true
	r.resumeCh = make(chan struct{})
	r.mu.Unlock()

	if err := c.queries.UpdateBatchStatus(r.ctx, batchID, model.BatchStatusPaused); err != nil {
		c.logger.Error("persisting pause", "batch_id", batchID, "error", err)
	}
	c.emit(r, EventBatchPaused, nil)
	c.logger.Info("batch paused", "batch_id", batchID)
	return nil
}

// Resume lifts a pause. Resuming a batch that is not paused is a no-op.
func (c *Controller) Resume(batchID int64) error {
	r, err := c.activeRun(batchID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if !r.paused {
		r.mu.Unlock()
		return nil
	}
	r.paused = false
	close(r.resumeCh)
	r.resumeCh = nil
	r.mu.Unlock()

	if err := c.queries.MarkBatchTranslating(r.ctx, batchID); err != nil {
		c.logger.Error("persisting resume", "batch_id", batchID, "error", err)
	}
	c.emit(r, EventBatchResumed, nil)
	c.logger.Info("batch resumed", "batch_id", batchID)
	return nil
}

// Cancel stops a batch. A running batch stops at the next chunk boundary:
// the in-flight chunk completes and keeps its results, remaining units stay
// pending for the audit trail. A pending batch is cancelled directly.
func (c *Controller) Cancel(ctx context.Context, batchID int64, reason string) error {
	c.mu.Lock()
	r, active := c.runs[batchID]
	c.mu.Unlock()

	if active {
		r.cancelReason = reason
		r.cancelled.Store(true)

		// Wake a paused run so it can observe the flag.
		r.mu.Lock()
		if r.paused {
			r.paused = false
			close(r.resumeCh)
			r.resumeCh = nil
		}
		r.mu.Unlock()

		c.logger.Info("batch cancellation requested", "batch_id", batchID, "reason", reason)
		return nil
	}

	batch, err := c.queries.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("loading batch %d: %w", batchID, err)
	}
	if !batch.Status.CanTransitionTo(model.BatchStatusCancelled) {
		return fmt.Errorf("batch %d is %s and cannot be cancelled", batchID, batch.Status)
	}
	if err := c.queries.MarkBatchCancelled(ctx, batchID, reason); err != nil {
		return fmt.Errorf("marking batch cancelled: %w", err)
	}

	ev := newEvent(EventBatchCancelled, &batch)
	ev.BatchNumber = batch.BatchNumber
	ev.TotalUnits = batch.UnitCount
	ev.Reason = reason
	c.publish(ctx, ev)
	c.logger.Info("batch cancelled before start", "batch_id", batchID, "reason", reason)
	return nil
}

// Running reports whether the batch has an active run.
func (c *Controller) Running(batchID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.runs[batchID]
	return ok
}

// Wait blocks until the batch run finishes. Used by tests and shutdown.
func (c *Controller) Wait(batchID int64) {
	c.mu.Lock()
	r, ok := c.runs[batchID]
	c.mu.Unlock()
	if ok {
		<-r.done
	}
}

func (c *Controller) activeRun(batchID int64) (*run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.runs[batchID]
	if !ok {
		return nil, fmt.Errorf("batch %d: %w", batchID, ErrNotRunning)
	}
	return r, nil
}

func (c *Controller) unregister(r *run) {
	c.mu.Lock()
	delete(c.runs, r.batch.ID)
	delete(c.byPL, r.batch.ProjectLanguageID)
	c.mu.Unlock()
}

// execute drives one batch run to a terminal state.
func (c *Controller) execute(r *run) {
	defer close(r.done)
	defer c.unregister(r)

	translator, err := c.registry.Get(r.tc.ProviderID)
	if err != nil {
		c.failBatch(r, provider.Fatal(err))
		return
	}

	chunkSize := r.tc.UnitsPerBatch
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	memory := c.loadMemoryHints(r)

	pending := r.ledger.Pending()
	for start := 0; start < len(pending); start += chunkSize {
		if !c.waitIfPaused(r) {
			c.cancelBatch(r)
			return
		}
		if r.cancelled.Load() {
			c.cancelBatch(r)
			return
		}

		end := min(start+chunkSize, len(pending))
		if err := c.processChunk(r, translator, pending[start:end], memory); err != nil {
			c.failBatch(r, err)
			return
		}
		c.emit(r, EventBatchProgress, nil)
	}

	if r.cancelled.Load() {
		c.cancelBatch(r)
		return
	}
	c.completeBatch(r)
}

// waitIfPaused blocks while the run is paused. Returns false when the wait
// ended because of cancellation or context shutdown.
func (c *Controller) waitIfPaused(r *run) bool {
	for {
		r.mu.Lock()
		paused := r.paused
		resumeCh := r.resumeCh
		r.mu.Unlock()

		if !paused {
			return !r.cancelled.Load()
		}

		select {
		case <-resumeCh:
		case <-r.ctx.Done():
			return false
		}
	}
}

// processChunk sends one chunk to the provider and settles each unit.
// Unit-local failures are recorded and do not abort the run.
func (c *Controller) processChunk(r *run, translator provider.Translator, unitIDs []int64, memory []provider.MemoryHint) error {
	units, err := c.queries.ListUnitsByIDs(r.ctx, unitIDs)
	if err != nil {
		return fmt.Errorf("loading chunk units: %w", err)
	}
	byID := make(map[int64]model.Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	req := &provider.Request{
		ContextID:      r.tc.ID,
		ModelID:        r.tc.ModelID,
		SourceLanguage: r.tc.SourceLanguage,
		TargetLanguage: r.tc.TargetLanguage,
		Terms:          r.tc.Terms,
		Memory:         memory,
		Units:          make([]provider.Unit, 0, len(unitIDs)),
	}
	for _, id := range unitIDs {
		u, ok := byID[id]
		if !ok {
			// Unit deleted since planning; settle it as failed.
			c.settleUnitFailure(r, id, "unit no longer exists")
			continue
		}
		req.Units = append(req.Units, provider.Unit{ID: u.ID, Key: u.Key, Text: u.SourceText})
	}
	if len(req.Units) == 0 {
		return nil
	}

	result, err := translator.Translate(r.ctx, req)
	if err != nil {
		return fmt.Errorf("provider %s: %w", translator.ID(), err)
	}

	for _, u := range req.Units {
		if text, ok := result.Translations[u.ID]; ok {
			c.settleUnitSuccess(r, u.ID, text)
			continue
		}
		reason, ok := result.Failed[u.ID]
		if !ok {
			reason = "missing from provider result"
		}
		c.settleUnitFailure(r, u.ID, reason)
	}
	return nil
}

func (c *Controller) settleUnitSuccess(r *run, unitID int64, text string) {
	if err := r.ledger.MarkCompleted(unitID); err != nil {
		c.logger.Error("ledger update", "batch_id", r.batch.ID, "unit_id", unitID, "error", err)
		return
	}
	err := c.queries.UpsertUnitTranslation(r.ctx, store.UpsertUnitTranslationParams{
		UnitID:            unitID,
		ProjectLanguageID: r.batch.ProjectLanguageID,
		Text:              text,
	})
	if err != nil {
		c.logger.Error("storing translation", "batch_id", r.batch.ID, "unit_id", unitID, "error", err)
	}
	err = c.queries.UpdateBatchUnitStatus(r.ctx, store.UpdateBatchUnitStatusParams{
		BatchID: r.batch.ID,
		UnitID:  unitID,
		Status:  model.UnitStatusCompleted,
	})
	if err != nil {
		c.logger.Error("updating unit status", "batch_id", r.batch.ID, "unit_id", unitID, "error", err)
	}
}

func (c *Controller) settleUnitFailure(r *run, unitID int64, reason string) {
	if err := r.ledger.MarkFailed(unitID); err != nil {
		c.logger.Error("ledger update", "batch_id", r.batch.ID, "unit_id", unitID, "error", err)
		return
	}
	err := c.queries.UpdateBatchUnitStatus(r.ctx, store.UpdateBatchUnitStatusParams{
		BatchID:      r.batch.ID,
		UnitID:       unitID,
		Status:       model.UnitStatusFailed,
		ErrorMessage: reason,
	})
	if err != nil {
		c.logger.Error("updating unit status", "batch_id", r.batch.ID, "unit_id", unitID, "error", err)
	}
	c.logger.Warn("unit failed", "batch_id", r.batch.ID, "unit_id", unitID, "reason", reason)
}

func (c *Controller) loadMemoryHints(r *run) []provider.MemoryHint {
	if r.tc.SkipMemory {
		return nil
	}
	prior, err := c.queries.ListRecentTranslations(r.ctx, r.batch.ProjectLanguageID, memoryHintLimit)
	if err != nil {
		c.logger.Warn("loading memory hints", "batch_id", r.batch.ID, "error", err)
		return nil
	}
	hints := make([]provider.MemoryHint, len(prior))
	for i, p := range prior {
		hints[i] = provider.MemoryHint{Source: p.Unit.SourceText, Target: p.Text}
	}
	return hints
}

// completeBatch ends the run as completed. Unit failures do not demote the
// batch: a completed batch with failed units is the partial-failure outcome
// and the failed units are replanned into a future batch.
func (c *Controller) completeBatch(r *run) {
	if err := c.queries.MarkBatchCompleted(r.ctx, r.batch.ID); err != nil {
		c.logger.Error("marking batch completed", "batch_id", r.batch.ID, "error", err)
	}

	snap := r.ledger.Snapshot()
	c.emit(r, EventBatchCompleted, func(ev *Event) {
		ev.Duration = c.runDuration(r)
	})
	c.logger.Info("batch completed",
		"batch_id", r.batch.ID,
		"completed", snap.Completed,
		"failed", snap.Failed,
		"total", snap.Total)
}

// failBatch ends the run as failed. Fatal errors exhaust the retry budget;
// transient errors consume one retry.
func (c *Controller) failBatch(r *run, cause error) {
	retryCount := r.batch.RetryCount + 1
	if provider.IsFatal(cause) {
		retryCount = model.MaxBatchRetries
	}

	err := c.queries.MarkBatchFailed(r.ctx, store.MarkBatchFailedParams{
		ID:           r.batch.ID,
		ErrorMessage: cause.Error(),
		RetryCount:   retryCount,
	})
	if err != nil {
		c.logger.Error("marking batch failed", "batch_id", r.batch.ID, "error", err)
	}

	c.emit(r, EventBatchFailed, func(ev *Event) {
		ev.ErrorMessage = cause.Error()
		ev.RetryCount = retryCount
	})
	c.logger.Error("batch failed",
		"batch_id", r.batch.ID,
		"retry_count", retryCount,
		"fatal", provider.IsFatal(cause),
		"error", cause)
}

// cancelBatch ends the run as cancelled. Settled units keep their results;
// the rest stay pending.
func (c *Controller) cancelBatch(r *run) {
	if err := c.queries.MarkBatchCancelled(r.ctx, r.batch.ID, r.cancelReason); err != nil {
		c.logger.Error("marking batch cancelled", "batch_id", r.batch.ID, "error", err)
	}

	c.emit(r, EventBatchCancelled, func(ev *Event) {
		ev.Reason = r.cancelReason
	})
	c.logger.Info("batch cancelled",
		"batch_id", r.batch.ID,
		"completed", r.ledger.Completed(),
		"remaining", r.ledger.Remaining(),
		"reason", r.cancelReason)
}

func (c *Controller) runDuration(r *run) time.Duration {
	if r.batch.StartedAt.Valid {
		return time.Since(r.batch.StartedAt.Time)
	}
	return time.Since(r.startedAt)
}

// emit builds an event from the run state, publishes it on the bus and
// persists it to the audit log.
func (c *Controller) emit(r *run, kind EventKind, mutate func(*Event)) {
	snap := r.ledger.Snapshot()

	ev := newEvent(kind, &r.batch)
	ev.ProviderID = r.tc.ProviderID
	ev.BatchNumber = r.batch.BatchNumber
	ev.TotalUnits = snap.Total
	ev.CompletedUnits = snap.Completed
	ev.FailedUnits = snap.Failed
	ev.RetryCount = r.batch.RetryCount
	if mutate != nil {
		mutate(&ev)
	}
	c.publish(r.ctx, ev)
}

func (c *Controller) publish(ctx context.Context, ev Event) {
	c.bus.Publish(ev)

	payload, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error("encoding event payload", "event_id", ev.ID, "error", err)
		payload = []byte("{}")
	}
	err = c.queries.CreateBatchEvent(ctx, store.CreateBatchEventParams{
		EventID:           ev.ID,
		Kind:              string(ev.Kind),
		BatchID:           ev.BatchID,
		ProjectLanguageID: ev.ProjectLanguageID,
		Payload:           string(payload),
		OccurredAt:        ev.OccurredAt,
	})
	if err != nil {
		c.logger.Error("persisting event", "event_id", ev.ID, "kind", ev.Kind, "error", err)
	}
}
