package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/metrics"
	"github.com/venuevibe/vibecheck/internal/model"
	"github.com/venuevibe/vibecheck/internal/queue"
	"github.com/venuevibe/vibecheck/internal/scraper"
)

// ErrUpstream wraps failures to fetch or decode the listings page. A sync
// that fails with it writes no rows and no watermark.
var ErrUpstream = errors.New("event sync: upstream unavailable")

// SyncResult describes one completed sync.
type SyncResult struct {
	Count     int                  `json:"count"`
	IDs       []string             `json:"ids"`
	Unmatched []string             `json:"unmatchedVenues"`
	Skipped   int                  `json:"skipped"`
	Watermark *model.SyncWatermark `json:"watermark"`
	StartedAt time.Time            `json:"startedAt"`
	Duration  time.Duration        `json:"-"`
}

// Syncer runs one event synchronization.
type Syncer interface {
	Sync(ctx context.Context) (SyncResult, error)
}

// EventSyncOptions carries the optional collaborators of EventSyncService.
type EventSyncOptions struct {
	Location  *time.Location // zone scraped wall-clock times are read in
	MaxVenues int            // 0 means unbounded
	Publisher Publisher
	Metrics   *metrics.Metrics
	Logger    *logging.Logger
	Now       Clock
}

// EventSyncService fetches listings, matches them to venues and upserts the
// matched events.
type EventSyncService struct {
	fetcher    PageFetcher
	extractor  *scraper.Extractor
	venues     VenueStore
	events     EventStore
	watermarks WatermarkStore

	loc       *time.Location
	maxVenues int
	publisher Publisher
	metrics   *metrics.Metrics
	log       *logging.Logger
	now       Clock
}

func NewEventSyncService(fetcher PageFetcher, venues VenueStore, events EventStore, watermarks WatermarkStore, opts EventSyncOptions) *EventSyncService {
	s := &EventSyncService{
		fetcher:    fetcher,
		venues:     venues,
		events:     events,
		watermarks: watermarks,
		loc:        opts.Location,
		maxVenues:  opts.MaxVenues,
		publisher:  opts.Publisher,
		metrics:    opts.Metrics,
		log:        opts.Logger,
		now:        opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.log == nil {
		s.log = logging.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.extractor = scraper.NewExtractor(s.log)
	return s
}

// Sync fetches the remote page and syncs the listings it contains. A page
// without a decodable payload fails the sync; a payload with no listings is
// a successful sync of zero rows.
func (s *EventSyncService) Sync(ctx context.Context) (SyncResult, error) {
	started := s.now()
	html, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.metrics.SyncFailed(s.now().Sub(started))
		return SyncResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	listings, err := s.extractor.Parse(html)
	if err != nil {
		s.metrics.SyncFailed(s.now().Sub(started))
		return SyncResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return s.syncListings(ctx, started, listings)
}

// SyncListings syncs already extracted listings.
func (s *EventSyncService) SyncListings(ctx context.Context, listings []scraper.Listing) (SyncResult, error) {
	return s.syncListings(ctx, s.now(), listings)
}

func (s *EventSyncService) syncListings(ctx context.Context, started time.Time, listings []scraper.Listing) (SyncResult, error) {
	res, err := s.run(ctx, started, listings)
	res.Duration = s.now().Sub(started)
	if err != nil {
		s.metrics.SyncFailed(res.Duration)
		return res, err
	}
	s.metrics.SyncSucceeded(res.Count, len(res.Unmatched), res.Duration)
	s.log.Infof("event sync: %d upserted, %d unmatched venue(s), %d skipped in %s",
		res.Count, len(res.Unmatched), res.Skipped, res.Duration)
	s.publish(ctx, res)
	return res, nil
}

func (s *EventSyncService) run(ctx context.Context, started time.Time, listings []scraper.Listing) (SyncResult, error) {
	res := SyncResult{StartedAt: started, IDs: []string{}, Unmatched: []string{}}

	venues, err := s.venues.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("event sync: load venues: %w", err)
	}
	index := s.venueIndex(venues)

	rows := make([]model.Event, 0, len(listings))
	var unmatched []string
	for _, l := range listings {
		venueName := l.Event.Venue.Name
		venueID, ok := index[strings.ToLower(venueName)]
		if !ok {
			unmatched = append(unmatched, venueName)
			continue
		}
		ev, err := s.toEvent(l, venueID)
		if err != nil {
			res.Skipped++
			s.log.Warnf("event sync: skip listing %s: %v", l.ID, err)
			continue
		}
		rows = append(rows, ev)
	}
	rows = lo.UniqBy(rows, func(e model.Event) string { return e.ID })
	res.Unmatched = lo.Uniq(unmatched)
	slices.Sort(res.Unmatched)
	for _, name := range res.Unmatched {
		s.log.Infof("event sync: missing venue: %s", name)
	}
	if res.Unmatched == nil {
		res.Unmatched = []string{}
	}

	n, err := s.events.Upsert(ctx, rows)
	if err != nil {
		return res, fmt.Errorf("event sync: upsert: %w", err)
	}
	res.Count = n
	res.IDs = lo.Map(rows, func(e model.Event, _ int) string { return e.ID })

	wm, err := s.watermarks.Append(ctx, s.now(), n)
	if err != nil {
		return res, fmt.Errorf("event sync: append watermark: %w", err)
	}
	res.Watermark = wm
	return res, nil
}

// venueIndex maps lowercased venue names to ids. The first venue wins when
// names collide, and venues past maxVenues are ignored.
func (s *EventSyncService) venueIndex(venues []model.Venue) map[string]string {
	if s.maxVenues > 0 && len(venues) > s.maxVenues {
		s.log.Warnf("event sync: %d venues exceed index cap %d; ignoring the rest", len(venues), s.maxVenues)
		venues = venues[:s.maxVenues]
	}
	index := make(map[string]string, len(venues))
	for _, v := range venues {
		key := strings.ToLower(v.Name)
		if _, dup := index[key]; !dup {
			index[key] = v.ID
		}
	}
	return index
}

func (s *EventSyncService) toEvent(l scraper.Listing, venueID string) (model.Event, error) {
	start, err := scraper.ParseLocalTime(l.Event.StartTime, s.loc)
	if err != nil {
		return model.Event{}, err
	}
	end, err := scraper.ParseLocalTime(l.Event.EndTime, s.loc)
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		ID:          l.ID,
		Title:       l.Event.Title,
		VenueID:     lo.ToPtr(venueID),
		ArtistNames: JoinArtistNames(l.Event.Artists),
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
	}, nil
}

// JoinArtistNames prefixes every name with ", ", including the first. The
// stored values have always carried the leading separator.
func JoinArtistNames(artists []scraper.Entity) string {
	return lo.Reduce(artists, func(acc string, a scraper.Entity, _ int) string {
		return acc + ", " + a.Name
	}, "")
}

func (s *EventSyncService) publish(ctx context.Context, res SyncResult) {
	if s.publisher == nil {
		return
	}
	ev := queue.SyncCompletedEvent{
		Count:           res.Count,
		IDs:             res.IDs,
		UnmatchedVenues: res.Unmatched,
		SyncedAt:        s.now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishSyncCompleted(ctx, ev); err != nil {
		s.log.Warnf("event sync: publish events.synced: %v", err)
	}
}
