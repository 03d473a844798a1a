package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/venuevibe/vibecheck/internal/model"
)

// SurveyRepo encapsulates queries on the surveys table. Surveys are
// append-only; there is no update or delete.
type SurveyRepo struct {
	db *sql.DB
}

func NewSurveyRepo(db *sql.DB) *SurveyRepo {
	return &SurveyRepo{db: db}
}

// InsertResult is the storage outcome of a survey insert.
type InsertResult struct {
	ID           string `json:"id"`
	RowsAffected int64  `json:"rowsAffected"`
}

// SurveySummary holds the raw aggregates for a window. Averages are invalid
// when Count is zero.
type SurveySummary struct {
	Count             int
	AvgMellowOrDancey sql.NullFloat64
	AvgCrowded        sql.NullFloat64
	AvgSecurityChill  sql.NullFloat64
	AvgRatio          sql.NullFloat64
	AvgLineSpeed      sql.NullFloat64
}

// HourBucket is the number of surveys created in the hour starting at Start.
type HourBucket struct {
	Start time.Time
	Count int
}

// SurveyWindow is everything the aggregate needs, read from one snapshot.
type SurveyWindow struct {
	Summary  SurveySummary
	Comments []model.SurveyComment
	Hours    []HourBucket
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert stores a survey. A venue id without a matching venue returns
// ErrVenueNotFound.
func (r *SurveyRepo) Insert(ctx context.Context, s *model.Survey) (InsertResult, error) {
	const q = `INSERT INTO surveys
	           (id, venue_id, mellow_or_dancey, crowded, security_chill, ratio, line_speed, comment, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var comment any
	if s.Comment != nil {
		comment = *s.Comment
	}
	res, err := r.db.ExecContext(ctx, q,
		s.ID, s.VenueID, s.MellowOrDancey, s.Crowded, s.SecurityChill, s.Ratio, s.LineSpeed, comment, s.CreatedAt.UTC())
	if err != nil {
		if isMySQLError(err, mysqlErrNoReferencedRow) {
			return InsertResult{}, ErrVenueNotFound
		}
		return InsertResult{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return InsertResult{}, err
	}
	return InsertResult{ID: s.ID, RowsAffected: n}, nil
}

// Summary computes count and metric averages for the venue's surveys created
// in [since, until).
func (r *SurveyRepo) Summary(ctx context.Context, venueID string, since, until time.Time) (SurveySummary, error) {
	return summary(ctx, r.db, venueID, since, until)
}

// RecentComments returns up to limit non-empty comments in [since, until),
// newest first.
func (r *SurveyRepo) RecentComments(ctx context.Context, venueID string, since, until time.Time, limit int) ([]model.SurveyComment, error) {
	return recentComments(ctx, r.db, venueID, since, until, limit)
}

// HourlyCounts groups the venue's surveys in [since, until) by UTC hour.
// Hours without surveys are absent; callers fill the gaps.
func (r *SurveyRepo) HourlyCounts(ctx context.Context, venueID string, since, until time.Time) ([]HourBucket, error) {
	return hourlyCounts(ctx, r.db, venueID, since, until)
}

// Window runs Summary, RecentComments and HourlyCounts in one read-only
// REPEATABLE READ transaction, so the histogram total always equals the
// summary count.
func (r *SurveyRepo) Window(ctx context.Context, venueID string, since, until time.Time, limit int) (w SurveyWindow, err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return SurveyWindow{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if w.Summary, err = summary(ctx, tx, venueID, since, until); err != nil {
		return SurveyWindow{}, err
	}
	if w.Comments, err = recentComments(ctx, tx, venueID, since, until, limit); err != nil {
		return SurveyWindow{}, err
	}
	if w.Hours, err = hourlyCounts(ctx, tx, venueID, since, until); err != nil {
		return SurveyWindow{}, err
	}
	return w, nil
}

func summary(ctx context.Context, db querier, venueID string, since, until time.Time) (SurveySummary, error) {
	const q = `SELECT COUNT(*),
	                  AVG(mellow_or_dancey), AVG(crowded), AVG(security_chill), AVG(ratio), AVG(line_speed)
	           FROM surveys
	           WHERE venue_id = ? AND created_at >= ? AND created_at < ?`
	var s SurveySummary
	err := db.QueryRowContext(ctx, q, venueID, since.UTC(), until.UTC()).Scan(
		&s.Count, &s.AvgMellowOrDancey, &s.AvgCrowded, &s.AvgSecurityChill, &s.AvgRatio, &s.AvgLineSpeed)
	if err != nil {
		return SurveySummary{}, err
	}
	return s, nil
}

func recentComments(ctx context.Context, db querier, venueID string, since, until time.Time, limit int) ([]model.SurveyComment, error) {
	const q = `SELECT comment, created_at
	           FROM surveys
	           WHERE venue_id = ? AND created_at >= ? AND created_at < ?
	             AND comment IS NOT NULL AND comment <> ''
	           ORDER BY created_at DESC
	           LIMIT ?`
	rows, err := db.QueryContext(ctx, q, venueID, since.UTC(), until.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SurveyComment
	for rows.Next() {
		var c model.SurveyComment
		if err := rows.Scan(&c.Comment, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func hourlyCounts(ctx context.Context, db querier, venueID string, since, until time.Time) ([]HourBucket, error) {
	const q = `SELECT DATE_FORMAT(created_at, '%Y-%m-%d %H:00:00') AS hour_start, COUNT(*)
	           FROM surveys
	           WHERE venue_id = ? AND created_at >= ? AND created_at < ?
	           GROUP BY hour_start
	           ORDER BY hour_start`
	rows, err := db.QueryContext(ctx, q, venueID, since.UTC(), until.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HourBucket
	for rows.Next() {
		var (
			raw string
			b   HourBucket
		)
		if err := rows.Scan(&raw, &b.Count); err != nil {
			return nil, err
		}
		start, err := time.ParseInLocation("2006-01-02 15:04:05", raw, time.UTC)
		if err != nil {
			return nil, err
		}
		b.Start = start
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
