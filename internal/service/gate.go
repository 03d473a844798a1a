package service

import (
	"context"
	"errors"
	"time"

	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/metrics"
	"github.com/venuevibe/vibecheck/internal/model"
	"github.com/venuevibe/vibecheck/internal/repository"
)

// DefaultStaleAfter is the watermark age at which reads trigger a sync.
const DefaultStaleAfter = time.Hour

// Gate decision reasons, also used as metric labels.
const (
	ReasonForced      = "forced"
	ReasonNoWatermark = "no_watermark"
	ReasonStale       = "stale"
	ReasonFresh       = "fresh"
)

// Decision is the outcome of a staleness check.
type Decision struct {
	Sync   bool
	Reason string
}

// SyncGate decides whether a read must sync events first. There is one
// watermark for the whole dataset. Concurrent stale reads may each sync;
// the upsert is idempotent so the cost is a redundant fetch.
type SyncGate struct {
	staleAfter time.Duration
	watermarks WatermarkStore
	syncer     Syncer
	metrics    *metrics.Metrics
	log        *logging.Logger
	now        Clock
}

func NewSyncGate(staleAfter time.Duration, watermarks WatermarkStore, syncer Syncer, m *metrics.Metrics, log *logging.Logger) *SyncGate {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if log == nil {
		log = logging.Nop()
	}
	return &SyncGate{staleAfter: staleAfter, watermarks: watermarks, syncer: syncer, metrics: m, log: log, now: time.Now}
}

// WithClock replaces the time source.
func (g *SyncGate) WithClock(now Clock) *SyncGate {
	g.now = now
	return g
}

// Decide applies the rule: sync when forced, when there is no watermark, or
// when the latest one is at least staleAfter old.
func (g *SyncGate) Decide(force bool, latest *model.SyncWatermark, now time.Time) Decision {
	switch {
	case force:
		return Decision{Sync: true, Reason: ReasonForced}
	case latest == nil:
		return Decision{Sync: true, Reason: ReasonNoWatermark}
	case now.Sub(latest.CreatedAt) >= g.staleAfter:
		return Decision{Sync: true, Reason: ReasonStale}
	default:
		return Decision{Sync: false, Reason: ReasonFresh}
	}
}

// EnsureFresh syncs when Decide says so. A watermark that cannot be read
// counts as missing. The sync error is returned for the caller to log; the
// read should proceed with whatever is stored.
func (g *SyncGate) EnsureFresh(ctx context.Context, force bool) (Decision, error) {
	var latest *model.SyncWatermark
	if !force {
		wm, err := g.watermarks.Latest(ctx)
		switch {
		case err == nil:
			latest = wm
		case errors.Is(err, repository.ErrWatermarkNotFound):
		default:
			g.log.Warnf("sync gate: read watermark: %v", err)
		}
	}
	d := g.Decide(force, latest, g.now())
	g.metrics.GateDecision(d.Reason)
	if !d.Sync {
		return d, nil
	}
	g.log.Debugf("sync gate: syncing (%s)", d.Reason)
	if _, err := g.syncer.Sync(ctx); err != nil {
		return d, err
	}
	return d, nil
}
