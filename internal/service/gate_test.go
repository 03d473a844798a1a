package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuevibe/vibecheck/internal/model"
)

func TestGateDecide(t *testing.T) {
	now := time.Date(2024, 8, 10, 12, 0, 0, 0, time.UTC)
	g := NewSyncGate(time.Hour, nil, nil, nil, nil)
	wm := func(age time.Duration) *model.SyncWatermark {
		return &model.SyncWatermark{CreatedAt: now.Add(-age)}
	}

	cases := []struct {
		name   string
		force  bool
		latest *model.SyncWatermark
		want   Decision
	}{
		{"no watermark", false, nil, Decision{true, ReasonNoWatermark}},
		{"59 minutes", false, wm(59 * time.Minute), Decision{false, ReasonFresh}},
		{"60 minutes", false, wm(time.Hour), Decision{true, ReasonStale}},
		{"61 minutes", false, wm(61 * time.Minute), Decision{true, ReasonStale}},
		{"forced fresh", true, wm(time.Minute), Decision{true, ReasonForced}},
		{"forced none", true, nil, Decision{true, ReasonForced}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, g.Decide(tc.force, tc.latest, now))
		})
	}
}

func TestGateDefaultsToOneHour(t *testing.T) {
	now := time.Now()
	g := NewSyncGate(0, nil, nil, nil, nil)
	assert.False(t, g.Decide(false, &model.SyncWatermark{CreatedAt: now.Add(-59 * time.Minute)}, now).Sync)
	assert.True(t, g.Decide(false, &model.SyncWatermark{CreatedAt: now.Add(-61 * time.Minute)}, now).Sync)
}

func TestEnsureFresh(t *testing.T) {
	now := time.Date(2024, 8, 10, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("fresh watermark skips sync", func(t *testing.T) {
		wms := &fakeWatermarks{rows: []model.SyncWatermark{{CreatedAt: now.Add(-10 * time.Minute)}}}
		s := &fakeSyncer{}
		d, err := NewSyncGate(time.Hour, wms, s, nil, nil).WithClock(fixedClock(now)).EnsureFresh(ctx, false)
		require.NoError(t, err)
		assert.False(t, d.Sync)
		assert.Equal(t, 0, s.calls)
	})

	t.Run("no watermark syncs", func(t *testing.T) {
		s := &fakeSyncer{}
		d, err := NewSyncGate(time.Hour, &fakeWatermarks{}, s, nil, nil).WithClock(fixedClock(now)).EnsureFresh(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, ReasonNoWatermark, d.Reason)
		assert.Equal(t, 1, s.calls)
	})

	t.Run("unreadable watermark counts as missing", func(t *testing.T) {
		s := &fakeSyncer{}
		d, err := NewSyncGate(time.Hour, &fakeWatermarks{readErr: errBoom}, s, nil, nil).WithClock(fixedClock(now)).EnsureFresh(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, ReasonNoWatermark, d.Reason)
		assert.Equal(t, 1, s.calls)
	})

	t.Run("force syncs and reports sync error", func(t *testing.T) {
		wms := &fakeWatermarks{rows: []model.SyncWatermark{{CreatedAt: now}}}
		s := &fakeSyncer{err: errBoom}
		d, err := NewSyncGate(time.Hour, wms, s, nil, nil).WithClock(fixedClock(now)).EnsureFresh(ctx, true)
		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, ReasonForced, d.Reason)
		assert.Equal(t, 1, s.calls)
	})
}
