package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/venuevibe/vibecheck/internal/model"
)

// WatermarkRepo reads and appends rows of event_sync_watermarks. Rows are
// never updated or deleted.
type WatermarkRepo struct {
	db *sql.DB
}

func NewWatermarkRepo(db *sql.DB) *WatermarkRepo {
	return &WatermarkRepo{db: db}
}

// Latest returns the most recent watermark or ErrWatermarkNotFound.
func (r *WatermarkRepo) Latest(ctx context.Context) (*model.SyncWatermark, error) {
	const q = `SELECT id, created_at, events_synced FROM event_sync_watermarks ORDER BY created_at DESC, id DESC LIMIT 1`
	var w model.SyncWatermark
	if err := r.db.QueryRowContext(ctx, q).Scan(&w.ID, &w.CreatedAt, &w.EventsSynced); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWatermarkNotFound
		}
		return nil, err
	}
	w.CreatedAt = w.CreatedAt.UTC()
	return &w, nil
}

// Append records a completed sync at the given time.
func (r *WatermarkRepo) Append(ctx context.Context, at time.Time, eventsSynced int) (*model.SyncWatermark, error) {
	const q = `INSERT INTO event_sync_watermarks (created_at, events_synced) VALUES (?, ?)`
	at = at.UTC()
	res, err := r.db.ExecContext(ctx, q, at, eventsSynced)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.SyncWatermark{ID: uint64(id), CreatedAt: at, EventsSynced: eventsSynced}, nil
}
