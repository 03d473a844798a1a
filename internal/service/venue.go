package service

import (
	"context"
	"time"

	"github.com/venuevibe/vibecheck/internal/model"
)

// VenueService lists venues annotated with their trailing 24h survey count,
// busiest first.
type VenueService struct {
	store VenueStore
	now   Clock
}

func NewVenueService(store VenueStore) *VenueService {
	return &VenueService{store: store, now: time.Now}
}

func (s *VenueService) WithClock(now Clock) *VenueService {
	s.now = now
	return s
}

func (s *VenueService) List(ctx context.Context) ([]model.VenueWithCount, error) {
	now := s.now().UTC()
	venues, err := s.store.ListWithSurveyCounts(ctx, now.Add(-Window), now)
	if err != nil {
		return nil, err
	}
	if venues == nil {
		venues = []model.VenueWithCount{}
	}
	return venues, nil
}
