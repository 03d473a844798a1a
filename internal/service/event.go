package service

import (
	"context"
	"time"

	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/model"
)

// EventService serves a venue's upcoming events, refreshing the dataset
// through the gate first.
type EventService struct {
	events   EventStore
	gate     *SyncGate
	loc      *time.Location
	dayStart int
	log      *logging.Logger
	now      Clock
}

// NewEventService returns a service that hides events starting before
// dayStartHour on the current day in loc.
func NewEventService(events EventStore, gate *SyncGate, loc *time.Location, dayStartHour int, log *logging.Logger) *EventService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logging.Nop()
	}
	return &EventService{events: events, gate: gate, loc: loc, dayStart: dayStartHour, log: log, now: time.Now}
}

func (s *EventService) WithClock(now Clock) *EventService {
	s.now = now
	return s
}

// ListForVenue returns the venue's events from the day cutoff on, ascending
// by start. A failed sync is logged and the stored events are served.
func (s *EventService) ListForVenue(ctx context.Context, venueID string, forceSync bool) ([]model.Event, error) {
	if s.gate != nil {
		if d, err := s.gate.EnsureFresh(ctx, forceSync); err != nil {
			s.log.Warnf("events: sync (%s) failed, serving stored events: %v", d.Reason, err)
		}
	}
	events, err := s.events.ListByVenueFrom(ctx, venueID, s.DayCutoff())
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// DayCutoff is dayStart o'clock today in the events zone, in UTC.
func (s *EventService) DayCutoff() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), s.dayStart, 0, 0, 0, s.loc).UTC()
}
