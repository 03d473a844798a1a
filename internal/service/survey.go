package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/metrics"
	"github.com/venuevibe/vibecheck/internal/model"
	"github.com/venuevibe/vibecheck/internal/queue"
	"github.com/venuevibe/vibecheck/internal/repository"
)

const (
	// Window is the trailing period surveys are aggregated over.
	Window = 24 * time.Hour

	neutralMetric     = 50
	maxTopComments    = 10
	minRealComments   = 5
	maxCommentRunes   = 200
	hourlyBucketCount = 24

	hourLayout = "2006-01-02T15:04:05.000Z"
)

// placeholderComments are appended when a venue has fewer than
// minRealComments comments so the carousel is never empty.
var placeholderComments = []string{
	"The DJ is playing my ex's favorite song. Again.",
	"Bouncer complimented my shoes. 10/10 vibe.",
	"Line moved so slow I made three new friends.",
	"Somebody brought a glow stick the size of a broom.",
}

// ErrInvalidSurvey is returned by Submit for a malformed submission.
var ErrInvalidSurvey = errors.New("invalid survey")

// SurveyInput is a submission as decoded from JSON. Metrics are pointers
// so that missing fields can be told apart from zero.
type SurveyInput struct {
	VenueID        string   `json:"venueId"`
	MellowOrDancey *float64 `json:"mellowOrDancey"`
	Crowded        *float64 `json:"crowded"`
	SecurityChill  *float64 `json:"securityChill"`
	Ratio          *float64 `json:"ratio"`
	LineSpeed      *float64 `json:"lineSpeed"`
	Comment        *string  `json:"comment"`
}

// SurveyService stores submissions and computes the trailing 24h aggregate.
type SurveyService struct {
	store     SurveyStore
	publisher Publisher
	metrics   *metrics.Metrics
	log       *logging.Logger
	now       Clock
	newID     func() string
}

func NewSurveyService(store SurveyStore, publisher Publisher, m *metrics.Metrics, log *logging.Logger) *SurveyService {
	if log == nil {
		log = logging.Nop()
	}
	return &SurveyService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithClock replaces the time source.
func (s *SurveyService) WithClock(now Clock) *SurveyService {
	s.now = now
	return s
}

// Validate converts in to a Survey without id or timestamp.
func (in SurveyInput) Validate() (model.Survey, error) {
	if strings.TrimSpace(in.VenueID) == "" {
		return model.Survey{}, fmt.Errorf("%w: venueId is required", ErrInvalidSurvey)
	}
	out := model.Survey{VenueID: in.VenueID}
	fields := []struct {
		name string
		src  *float64
		dst  *int
	}{
		{"mellowOrDancey", in.MellowOrDancey, &out.MellowOrDancey},
		{"crowded", in.Crowded, &out.Crowded},
		{"securityChill", in.SecurityChill, &out.SecurityChill},
		{"ratio", in.Ratio, &out.Ratio},
		{"lineSpeed", in.LineSpeed, &out.LineSpeed},
	}
	for _, f := range fields {
		if f.src == nil {
			return model.Survey{}, fmt.Errorf("%w: %s is required", ErrInvalidSurvey, f.name)
		}
		v := *f.src
		if v != math.Trunc(v) || v < 0 || v > 100 {
			return model.Survey{}, fmt.Errorf("%w: %s must be an integer in [0, 100]", ErrInvalidSurvey, f.name)
		}
		*f.dst = int(v)
	}
	if in.Comment != nil {
		c := strings.TrimSpace(*in.Comment)
		if utf8.RuneCountInString(c) > maxCommentRunes {
			return model.Survey{}, fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidSurvey, maxCommentRunes)
		}
		if c != "" {
			out.Comment = &c
		}
	}
	return out, nil
}

// Submit validates and stores a survey. An unknown venue is reported as
// repository.ErrVenueNotFound.
func (s *SurveyService) Submit(ctx context.Context, in SurveyInput) (repository.InsertResult, error) {
	sv, err := in.Validate()
	if err != nil {
		return repository.InsertResult{}, err
	}
	sv.ID = s.newID()
	sv.CreatedAt = s.now().UTC()

	res, err := s.store.Insert(ctx, &sv)
	if err != nil {
		return repository.InsertResult{}, err
	}
	s.metrics.SurveySubmitted()
	if s.publisher != nil {
		ev := queue.SurveySubmittedEvent{
			SurveyID:    sv.ID,
			VenueID:     sv.VenueID,
			SubmittedAt: sv.CreatedAt.Format(time.RFC3339),
		}
		if err := s.publisher.PublishSurveySubmitted(ctx, ev); err != nil {
			s.log.Warnf("survey: publish survey.submitted: %v", err)
		}
	}
	return res, nil
}

// Aggregate summarises the venue's surveys created in [now-24h, now).
func (s *SurveyService) Aggregate(ctx context.Context, venueID string) (model.SurveyAggregate, error) {
	now := s.now().UTC()
	since := now.Add(-Window)

	win, err := s.store.Window(ctx, venueID, since, now, maxTopComments)
	if err != nil {
		return model.SurveyAggregate{}, fmt.Errorf("survey window: %w", err)
	}
	sum := win.Summary

	agg := model.SurveyAggregate{
		AvgMellowOrDancey: neutralMetric,
		AvgCrowded:        neutralMetric,
		AvgSecurityChill:  neutralMetric,
		AvgRatio:          neutralMetric,
		AvgLineSpeed:      neutralMetric,
		Count:             sum.Count,
	}
	if sum.Count > 0 {
		agg.AvgMellowOrDancey = avgOr(sum.AvgMellowOrDancey.Float64, sum.AvgMellowOrDancey.Valid)
		agg.AvgCrowded = avgOr(sum.AvgCrowded.Float64, sum.AvgCrowded.Valid)
		agg.AvgSecurityChill = avgOr(sum.AvgSecurityChill.Float64, sum.AvgSecurityChill.Valid)
		agg.AvgRatio = avgOr(sum.AvgRatio.Float64, sum.AvgRatio.Valid)
		agg.AvgLineSpeed = avgOr(sum.AvgLineSpeed.Float64, sum.AvgLineSpeed.Valid)
	}
	agg.TopComments = topComments(win.Comments, now)
	agg.HourlySubmissions = hourlyHistogram(win.Hours, now)
	return agg, nil
}

func avgOr(v float64, ok bool) float64 {
	if !ok {
		return neutralMetric
	}
	return v
}

// topComments keeps up to maxTopComments non-blank comments in the given
// order. Placeholders are stamped with now.
func topComments(comments []model.SurveyComment, now time.Time) []model.SurveyComment {
	found := lo.Filter(comments, func(c model.SurveyComment, _ int) bool {
		return strings.TrimSpace(c.Comment) != ""
	})
	if len(found) > maxTopComments {
		found = found[:maxTopComments]
	}
	if len(found) < minRealComments {
		found = append(found, lo.Map(placeholderComments, func(text string, _ int) model.SurveyComment {
			return model.SurveyComment{Comment: text, CreatedAt: now}
		})...)
	}
	return found
}

// hourlyHistogram returns 24 UTC hour buckets ending with the hour that
// contains now. Rows in the partial hour before the first bucket are counted
// in the first bucket so the total matches the window count.
func hourlyHistogram(buckets []repository.HourBucket, now time.Time) []model.HourlyCount {
	last := now.UTC().Truncate(time.Hour)
	first := last.Add(-(hourlyBucketCount - 1) * time.Hour)

	counts := make([]int, hourlyBucketCount)
	for _, b := range buckets {
		i := int(b.Start.UTC().Sub(first) / time.Hour)
		if i < 0 {
			i = 0
		}
		if i >= hourlyBucketCount {
			i = hourlyBucketCount - 1
		}
		counts[i] += b.Count
	}

	out := make([]model.HourlyCount, hourlyBucketCount)
	for i := range out {
		out[i] = model.HourlyCount{
			Hour:  first.Add(time.Duration(i) * time.Hour).Format(hourLayout),
			Count: counts[i],
		}
	}
	return out
}
