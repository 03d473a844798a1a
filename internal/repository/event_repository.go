package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/venuevibe/vibecheck/internal/model"
)

// upsertChunk bounds the number of rows per INSERT statement.
const upsertChunk = 200

// EventRepo encapsulates queries on the events table.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Upsert inserts events keyed by id. On a duplicate id only start_time and
// end_time are overwritten; title, venue and artists keep the values of the
// first insert. All chunks are written in one transaction. It returns the
// number of rows submitted.
func (r *EventRepo) Upsert(ctx context.Context, events []model.Event) (n int, err error) {
	if len(events) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	for start := 0; start < len(events); start += upsertChunk {
		end := start + upsertChunk
		if end > len(events) {
			end = len(events)
		}
		q, args := buildUpsert(events[start:end])
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return 0, err
		}
	}
	return len(events), nil
}

func buildUpsert(events []model.Event) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO events (id, title, venue_id, artist_names, start_time, end_time) VALUES ")
	args := make([]any, 0, len(events)*6)
	for i, e := range events {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?)")
		var venueID any
		if e.VenueID != nil {
			venueID = *e.VenueID
		}
		args = append(args, e.ID, e.Title, venueID, e.ArtistNames, e.StartTime.UTC(), e.EndTime.UTC())
	}
	b.WriteString(" ON DUPLICATE KEY UPDATE start_time = VALUES(start_time), end_time = VALUES(end_time)")
	return b.String(), args
}

// ListByVenueFrom returns the venue's events starting at or after from,
// earliest first.
func (r *EventRepo) ListByVenueFrom(ctx context.Context, venueID string, from time.Time) ([]model.Event, error) {
	const q = `SELECT id, title, venue_id, artist_names, start_time, end_time
	           FROM events
	           WHERE venue_id = ? AND start_time >= ?
	           ORDER BY start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, venueID, from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Event, 0)
	for rows.Next() {
		var (
			e     model.Event
			venue sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &venue, &e.ArtistNames, &e.StartTime, &e.EndTime); err != nil {
			return nil, err
		}
		if venue.Valid {
			v := venue.String
			e.VenueID = &v
		}
		e.StartTime = e.StartTime.UTC()
		e.EndTime = e.EndTime.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
