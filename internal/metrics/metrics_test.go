package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestSyncCounters(t *testing.T) {
	m := New()
	m.SyncSucceeded(3, 2, time.Second)
	m.SyncSucceeded(1, 0, time.Second)
	m.SyncFailed(time.Second)

	body := scrape(t, m)
	assert.Contains(t, body, `vibecheck_event_syncs_total{result="ok"} 2`)
	assert.Contains(t, body, `vibecheck_event_syncs_total{result="error"} 1`)
	assert.Contains(t, body, "vibecheck_events_upserted_total 4")
	assert.Contains(t, body, "vibecheck_unmatched_venues 0")
	assert.Contains(t, body, "vibecheck_event_sync_duration_seconds_count 3")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SyncSucceeded(1, 1, time.Second)
	m.SyncFailed(time.Second)
	m.SurveySubmitted()
	m.GateDecision("forced")
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.SurveySubmitted()
	m.GateDecision("stale")

	body := scrape(t, m)
	assert.Contains(t, body, "vibecheck_survey_submissions_total 1")
	assert.Contains(t, body, `vibecheck_sync_decisions_total{reason="stale"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
