// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/lingopack-go/internal/model"
)

const batchColumns = "id, project_language_id, provider_id, batch_number, unit_count, status, " +
	"retry_count, error_message, started_at, completed_at, created_at, updated_at"

func scanBatch(row interface{ Scan(...any) error }) (model.TranslationBatch, error) {
	var b model.TranslationBatch
	err := row.Scan(&b.ID, &b.ProjectLanguageID, &b.ProviderID, &b.BatchNumber, &b.UnitCount,
		&b.Status, &b.RetryCount, &b.ErrorMessage, &b.StartedAt, &b.CompletedAt,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// CreateBatchParams holds parameters for CreateBatch.
type CreateBatchParams struct {
	ProjectLanguageID int64
	ProviderID        string
	UnitCount         int64
}

// CreateBatch inserts a batch header. The batch number is assigned inside
// the insert as max(existing)+1 for the project language, so numbering stays
// gapless and never reuses a number even under concurrent creation; the
// unique index on (project_language_id, batch_number) backs this up.
func (q *Queries) CreateBatch(ctx context.Context, arg CreateBatchParams) (model.TranslationBatch, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO translation_batches
			(project_language_id, provider_id, batch_number, unit_count, status, retry_count, created_at, updated_at)
		VALUES (?, ?,
			(SELECT COALESCE(MAX(batch_number), 0) + 1 FROM translation_batches WHERE project_language_id = ?),
			?, ?, 0, ?, ?)
		RETURNING `+batchColumns,
		arg.ProjectLanguageID, arg.ProviderID, arg.ProjectLanguageID,
		arg.UnitCount, model.BatchStatusPending, now, now)
	return scanBatch(row)
}

// GetBatch fetches a batch by id.
func (q *Queries) GetBatch(ctx context.Context, id int64) (model.TranslationBatch, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM translation_batches WHERE id = ?`, id)
	return scanBatch(row)
}

// ListBatchesByProjectLanguage returns the batches of a project language,
// newest number first.
func (q *Queries) ListBatchesByProjectLanguage(ctx context.Context, projectLanguageID int64) ([]model.TranslationBatch, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+batchColumns+`
		FROM translation_batches
		WHERE project_language_id = ?
		ORDER BY batch_number DESC`, projectLanguageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var batches []model.TranslationBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// UpdateBatchStatus sets the batch status.
func (q *Queries) UpdateBatchStatus(ctx context.Context, id int64, status model.BatchStatus) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE translation_batches SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	return err
}

// MarkBatchTranslating moves a batch into the translating state and stamps
// the start time if not already set (a resumed or retried batch keeps its
// original start time).
func (q *Queries) MarkBatchTranslating(ctx context.Context, id int64) error {
	now := time.Now()
	_, err := q.db.ExecContext(ctx, `
		UPDATE translation_batches
		SET status = ?, started_at = COALESCE(started_at, ?), updated_at = ?
		WHERE id = ?`,
		model.BatchStatusTranslating, now, now, id)
	return err
}

// MarkBatchCompleted moves a batch into the completed state.
func (q *Queries) MarkBatchCompleted(ctx context.Context, id int64) error {
	now := time.Now()
	_, err := q.db.ExecContext(ctx, `
		UPDATE translation_batches
		SET status = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		model.BatchStatusCompleted, now, now, id)
	return err
}

// MarkBatchFailedParams holds parameters for MarkBatchFailed.
type MarkBatchFailedParams struct {
	ID           int64
	ErrorMessage string
	RetryCount   int64
}

// MarkBatchFailed records a batch-level failure and the new retry count.
func (q *Queries) MarkBatchFailed(ctx context.Context, arg MarkBatchFailedParams) error {
	now := time.Now()
	_, err := q.db.ExecContext(ctx, `
		UPDATE translation_batches
		SET status = ?, error_message = ?, retry_count = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		model.BatchStatusFailed,
		sql.NullString{String: arg.ErrorMessage, Valid: arg.ErrorMessage != ""},
		arg.RetryCount, now, now, arg.ID)
	return err
}

// MarkBatchCancelled moves a batch into the cancelled state.
func (q *Queries) MarkBatchCancelled(ctx context.Context, id int64, reason string) error {
	now := time.Now()
	_, err := q.db.ExecContext(ctx, `
		UPDATE translation_batches
		SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		model.BatchStatusCancelled,
		sql.NullString{String: reason, Valid: reason != ""},
		now, now, id)
	return err
}
