package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/venuevibe/vibecheck/internal/model"
	"github.com/venuevibe/vibecheck/internal/queue"
	"github.com/venuevibe/vibecheck/internal/repository"
)

type fakeVenues struct {
	venues []model.Venue
	counts []model.VenueWithCount
	err    error
	calls  int
}

func (f *fakeVenues) ListAll(context.Context) ([]model.Venue, error) {
	f.calls++
	return f.venues, f.err
}

func (f *fakeVenues) ListWithSurveyCounts(context.Context, time.Time, time.Time) ([]model.VenueWithCount, error) {
	f.calls++
	return f.counts, f.err
}

// fakeEvents mimics ON DUPLICATE KEY UPDATE on the time columns.
type fakeEvents struct {
	mu        sync.Mutex
	rows      map[string]model.Event
	upsertErr error
	lastFrom  time.Time
	listCalls int
}

func newFakeEvents() *fakeEvents { return &fakeEvents{rows: map[string]model.Event{}} }

func (f *fakeEvents) Upsert(_ context.Context, events []model.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	for _, e := range events {
		if old, ok := f.rows[e.ID]; ok {
			old.StartTime, old.EndTime = e.StartTime, e.EndTime
			f.rows[e.ID] = old
			continue
		}
		f.rows[e.ID] = e
	}
	return len(events), nil
}

func (f *fakeEvents) ListByVenueFrom(_ context.Context, venueID string, from time.Time) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastFrom = from
	var out []model.Event
	for _, e := range f.rows {
		if e.VenueID != nil && *e.VenueID == venueID && !e.StartTime.Before(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type fakeWatermarks struct {
	mu      sync.Mutex
	rows    []model.SyncWatermark
	readErr error
}

func (f *fakeWatermarks) Latest(context.Context) (*model.SyncWatermark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.rows) == 0 {
		return nil, repository.ErrWatermarkNotFound
	}
	wm := f.rows[len(f.rows)-1]
	return &wm, nil
}

func (f *fakeWatermarks) Append(_ context.Context, at time.Time, n int) (*model.SyncWatermark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wm := model.SyncWatermark{ID: uint64(len(f.rows) + 1), CreatedAt: at, EventsSynced: n}
	f.rows = append(f.rows, wm)
	return &wm, nil
}

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context) (string, error) {
	f.calls++
	return f.html, f.err
}

type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) Sync(context.Context) (SyncResult, error) {
	f.calls++
	return SyncResult{}, f.err
}

type fakePublisher struct {
	synced    []queue.SyncCompletedEvent
	submitted []queue.SurveySubmittedEvent
	err       error
}

func (f *fakePublisher) PublishSyncCompleted(_ context.Context, ev queue.SyncCompletedEvent) error {
	f.synced = append(f.synced, ev)
	return f.err
}

func (f *fakePublisher) PublishSurveySubmitted(_ context.Context, ev queue.SurveySubmittedEvent) error {
	f.submitted = append(f.submitted, ev)
	return f.err
}

type fakeSurveys struct {
	inserted  []model.Survey
	insertErr error
	summary   repository.SurveySummary
	comments  []model.SurveyComment
	hours     []repository.HourBucket
	readErr   error
	since     time.Time
	until     time.Time
}

func (f *fakeSurveys) Insert(_ context.Context, s *model.Survey) (repository.InsertResult, error) {
	if f.insertErr != nil {
		return repository.InsertResult{}, f.insertErr
	}
	f.inserted = append(f.inserted, *s)
	return repository.InsertResult{ID: s.ID, RowsAffected: 1}, nil
}

func (f *fakeSurveys) Window(_ context.Context, _ string, since, until time.Time, limit int) (repository.SurveyWindow, error) {
	f.since, f.until = since, until
	if f.readErr != nil {
		return repository.SurveyWindow{}, f.readErr
	}
	comments := f.comments
	if len(comments) > limit {
		comments = comments[:limit]
	}
	return repository.SurveyWindow{Summary: f.summary, Comments: comments, Hours: f.hours}, nil
}

var errBoom = errors.New("boom")

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }
