package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuevibe/vibecheck/internal/service"
)

func TestWriteSyncReport(t *testing.T) {
	var buf bytes.Buffer
	err := writeSyncReport(&buf, service.SyncResult{
		Count:     2,
		IDs:       []string{"1869001", "1869002"},
		Unmatched: []string{"Nowhere Bar"},
		Duration:  1500 * time.Millisecond,
	}, false)
	require.NoError(t, err)

	out := buf.String()
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Upserted events", lines[0])
	assert.Contains(t, out, "1869002")
	assert.Contains(t, out, "\nUnmatched venues\n")
	assert.Contains(t, out, "Event ID")
	assert.NotContains(t, out, "EVENT ID")
	assert.Contains(t, out, "2 rows")
	assert.Contains(t, out, "Venue name")
	assert.Contains(t, out, "Nowhere Bar")
	assert.Contains(t, out, "synced 2, 1 unmatched, 0 skipped in 1.5s")
}

func TestWriteSyncReportWithoutUnmatched(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSyncReport(&buf, service.SyncResult{IDs: []string{}}, false))
	assert.NotContains(t, buf.String(), "Unmatched venues")
	assert.Contains(t, buf.String(), "synced 0, 0 unmatched")
}
