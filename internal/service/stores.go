package service

import (
	"context"
	"time"

	"github.com/venuevibe/vibecheck/internal/model"
	"github.com/venuevibe/vibecheck/internal/repository"
)

// The store interfaces are satisfied by the repository package.

type VenueStore interface {
	ListAll(ctx context.Context) ([]model.Venue, error)
	ListWithSurveyCounts(ctx context.Context, since, until time.Time) ([]model.VenueWithCount, error)
}

type EventStore interface {
	Upsert(ctx context.Context, events []model.Event) (int, error)
	ListByVenueFrom(ctx context.Context, venueID string, from time.Time) ([]model.Event, error)
}

type WatermarkStore interface {
	Latest(ctx context.Context) (*model.SyncWatermark, error)
	Append(ctx context.Context, at time.Time, eventsSynced int) (*model.SyncWatermark, error)
}

type SurveyStore interface {
	Insert(ctx context.Context, s *model.Survey) (repository.InsertResult, error)
	// Window reads the summary, the newest comments and the hourly counts
	// from one consistent snapshot.
	Window(ctx context.Context, venueID string, since, until time.Time, limit int) (repository.SurveyWindow, error)
}

// PageFetcher returns the raw listings page.
type PageFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

var (
	_ VenueStore     = (*repository.VenueRepo)(nil)
	_ EventStore     = (*repository.EventRepo)(nil)
	_ WatermarkStore = (*repository.WatermarkRepo)(nil)
	_ SurveyStore    = (*repository.SurveyRepo)(nil)
)
