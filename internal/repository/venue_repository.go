package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/venuevibe/vibecheck/internal/model"
)

// VenueRepo encapsulates queries on the venues table.
type VenueRepo struct {
	db *sql.DB
}

func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// ListAll returns every venue ordered by name. The event synchronizer builds
// its name index from this list.
func (r *VenueRepo) ListAll(ctx context.Context) ([]model.Venue, error) {
	const q = `SELECT id, name FROM venues ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListWithSurveyCounts returns all venues with the number of surveys created
// in [since, until), busiest first. Venues without surveys are included with
// a zero count.
func (r *VenueRepo) ListWithSurveyCounts(ctx context.Context, since, until time.Time) ([]model.VenueWithCount, error) {
	const q = `SELECT v.id, v.name, COUNT(s.id) AS survey_count
	           FROM venues v
	           LEFT JOIN surveys s
	             ON s.venue_id = v.id AND s.created_at >= ? AND s.created_at < ?
	           GROUP BY v.id, v.name
	           ORDER BY survey_count DESC, v.name ASC`
	rows, err := r.db.QueryContext(ctx, q, since.UTC(), until.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.VenueWithCount, 0)
	for rows.Next() {
		var v model.VenueWithCount
		if err := rows.Scan(&v.ID, &v.Name, &v.SurveyCount); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
