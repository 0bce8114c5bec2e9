// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/lingopack-go/internal/model"
)

// CreateEventParams holds parameters for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	BatchID   sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts a system event log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	metadata := arg.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO events (level, category, message, batch_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, level, category, message, batch_id, metadata, created_at`,
		arg.Level, arg.Category, arg.Message, arg.BatchID, metadata, arg.CreatedAt)
	var e model.Event
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.BatchID, &e.Metadata, &e.CreatedAt)
	return e, err
}

// ListEvents returns the newest events up to limit.
func (q *Queries) ListEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, category, message, batch_id, metadata, created_at
		FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.BatchID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEventsBefore removes event log entries older than the cutoff.
// Returns the number of deleted rows.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateBatchEventParams holds parameters for CreateBatchEvent.
type CreateBatchEventParams struct {
	EventID           string
	Kind              string
	BatchID           int64
	ProjectLanguageID int64
	Payload           string
	OccurredAt        time.Time
}

// CreateBatchEvent persists one engine lifecycle event for audit. Inserts
// are idempotent on event id: delivery is at-least-once, so replays of the
// same event are ignored.
func (q *Queries) CreateBatchEvent(ctx context.Context, arg CreateBatchEventParams) error {
	payload := arg.Payload
	if payload == "" {
		payload = "{}"
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO batch_events (event_id, kind, batch_id, project_language_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.EventID, arg.Kind, arg.BatchID, arg.ProjectLanguageID, payload, arg.OccurredAt)
	return err
}

// BatchEvent is one persisted engine lifecycle event.
type BatchEvent struct {
	EventID           string
	Kind              string
	BatchID           int64
	ProjectLanguageID int64
	Payload           string
	OccurredAt        time.Time
}

// ListBatchEvents returns the persisted lifecycle events of a batch in
// emission order.
func (q *Queries) ListBatchEvents(ctx context.Context, batchID int64) ([]BatchEvent, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT event_id, kind, batch_id, project_language_id, payload, occurred_at
		FROM batch_events WHERE batch_id = ? ORDER BY occurred_at, event_id`, batchID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []BatchEvent
	for rows.Next() {
		var e BatchEvent
		if err := rows.Scan(&e.EventID, &e.Kind, &e.BatchID, &e.ProjectLanguageID, &e.Payload, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
