// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/lingopack-go/internal/model"
)

// CreateBatchUnits bulk-inserts the unit rows of a batch. The insert is a
// single statement, so it is atomic: either every row lands or none does.
// Processing order follows the position in unitIDs.
func (q *Queries) CreateBatchUnits(ctx context.Context, batchID int64, unitIDs []int64) error {
	if len(unitIDs) == 0 {
		return nil
	}
	now := time.Now()

	var sb strings.Builder
	sb.WriteString(`INSERT INTO translation_batch_units (batch_id, unit_id, processing_order, status, updated_at) VALUES `)
	args := make([]any, 0, len(unitIDs)*5)
	for i, unitID := range unitIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, batchID, unitID, int64(i), model.UnitStatusPending, now)
	}

	_, err := q.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("bulk inserting batch units: %w", err)
	}
	return nil
}

const batchUnitColumns = "id, batch_id, unit_id, processing_order, status, error_message, updated_at"

func scanBatchUnit(row interface{ Scan(...any) error }) (model.TranslationBatchUnit, error) {
	var u model.TranslationBatchUnit
	err := row.Scan(&u.ID, &u.BatchID, &u.UnitID, &u.ProcessingOrder, &u.Status, &u.ErrorMessage, &u.UpdatedAt)
	return u, err
}

// ListBatchUnits returns the unit rows of a batch in processing order.
func (q *Queries) ListBatchUnits(ctx context.Context, batchID int64) ([]model.TranslationBatchUnit, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+batchUnitColumns+`
		FROM translation_batch_units
		WHERE batch_id = ?
		ORDER BY processing_order`, batchID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var units []model.TranslationBatchUnit
	for rows.Next() {
		u, err := scanBatchUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// UpdateBatchUnitStatusParams holds parameters for UpdateBatchUnitStatus.
type UpdateBatchUnitStatusParams struct {
	BatchID      int64
	UnitID       int64
	Status       model.UnitStatus
	ErrorMessage string
}

// UpdateBatchUnitStatus sets the status of one unit within a batch.
func (q *Queries) UpdateBatchUnitStatus(ctx context.Context, arg UpdateBatchUnitStatusParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE translation_batch_units
		SET status = ?, error_message = ?, updated_at = ?
		WHERE batch_id = ? AND unit_id = ?`,
		arg.Status,
		sql.NullString{String: arg.ErrorMessage, Valid: arg.ErrorMessage != ""},
		time.Now(), arg.BatchID, arg.UnitID)
	return err
}

// BulkUpdateBatchUnitStatus sets the status of several units of one batch at once.
func (q *Queries) BulkUpdateBatchUnitStatus(ctx context.Context, batchID int64, unitIDs []int64, status model.UnitStatus) error {
	if len(unitIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE translation_batch_units
		SET status = ?, updated_at = ?
		WHERE batch_id = ? AND unit_id IN (%s)`, placeholders(len(unitIDs)))
	args := append([]any{status, time.Now(), batchID}, int64Args(unitIDs)...)
	_, err := q.db.ExecContext(ctx, query, args...)
	return err
}

// CountBatchUnitsByStatus returns the number of units per status for a batch.
func (q *Queries) CountBatchUnitsByStatus(ctx context.Context, batchID int64) (map[model.UnitStatus]int64, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM translation_batch_units
		WHERE batch_id = ?
		GROUP BY status`, batchID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.UnitStatus]int64)
	for rows.Next() {
		var status model.UnitStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
