package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(payload string) string {
	return `<html><head><script src="/x.js"></script></head><body>` +
		`<script id="__NEXT_DATA__" type="application/json">` + payload + `</script>` +
		`<script id="__NEXT_DATA__" type="application/json">{"props":{}}</script>` +
		`</body></html>`
}

const twoListings = `{"props":{"apolloState":{
 "EventListing:2":{"id":"2","event":{"__ref":"Event:200"}},
 "Event:200":{"id":"200","title":"Late Set","startTime":"2024-08-10T23:00:00.000","endTime":"2024-08-11T04:00:00.000",
   "artists":[{"__ref":"Artist:1"},{"__ref":"Artist:2"}],"venue":{"__ref":"Venue:9"}},
 "Artist:1":{"id":"1","name":"DJ One"},
 "Artist:2":{"id":2,"name":"DJ Two"},
 "Venue:9":{"id":"9","name":"Basement"},
 "EventListing:1":{"id":"1","event":{"__ref":"Event:100"}},
 "Event:100":{"id":"100","title":"Early Set","startTime":"2024-08-10T20:00:00.000","endTime":"2024-08-10T23:00:00.000",
   "artists":[],"venue":{"__ref":"Venue:9"}}
}}}`

func TestExtractResolvesReferencesInDocumentOrder(t *testing.T) {
	got := NewExtractor(nil).Extract(page(twoListings))
	require.Len(t, got, 2)

	assert.Equal(t, "EventListing:2", got[0].Key)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "200", got[0].Event.ID)
	assert.Equal(t, "Late Set", got[0].Event.Title)
	assert.Equal(t, "Basement", got[0].Event.Venue.Name)
	require.Len(t, got[0].Event.Artists, 2)
	assert.Equal(t, "DJ One", got[0].Event.Artists[0].Name)
	assert.Equal(t, "2", got[0].Event.Artists[1].ID)
	assert.JSONEq(t, `{"id":"9","name":"Basement"}`, string(got[0].Event.Venue.Data))

	assert.Equal(t, "EventListing:1", got[1].Key)
	assert.Empty(t, got[1].Event.Artists)
}

func TestExtractSkipsBrokenChains(t *testing.T) {
	payload := `{"props":{"apolloState":{
	 "EventListing:1":{"id":"1","event":{"__ref":"Event:missing"}},
	 "EventListing:2":{"id":"2"},
	 "EventListing:3":{"id":"3","event":{"__ref":"Event:3"}},
	 "Event:3":{"id":"3","title":"No venue","artists":[]},
	 "EventListing:4":{"id":"4","event":{"__ref":"Event:4"}},
	 "Event:4":{"id":"4","title":"Bad artist","artists":[{"__ref":"Artist:x"}],"venue":{"__ref":"Venue:1"}},
	 "EventListing:5":"not an object",
	 "EventListing:6":{"id":"6","event":{"__ref":"Event:6"}},
	 "Event:6":{"id":"6","title":"Good","startTime":"2024-01-01T22:00","endTime":"2024-01-02T02:00","artists":[],"venue":{"__ref":"Venue:1"}},
	 "Venue:1":{"id":"1","name":"Room"}
	}}}`
	got := NewExtractor(nil).Extract(page(payload))
	require.Len(t, got, 1)
	assert.Equal(t, "6", got[0].ID)
	assert.Equal(t, "Room", got[0].Event.Venue.Name)
}

func TestParsePayloadErrors(t *testing.T) {
	x := NewExtractor(nil)

	_, err := x.Parse("<html><body>nothing here</body></html>")
	require.ErrorIs(t, err, ErrPayloadNotFound)

	_, err = x.Parse(page(`{"props":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "__NEXT_DATA__")

	got, err := x.Parse(page(`{"props":{"apolloState":{}}}`))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = x.Parse(page(`{"props":{}}`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractNeverErrors(t *testing.T) {
	x := NewExtractor(nil)
	for _, html := range []string{"", "<html/>", page("{bad json"), page(`{"props":{"apolloState":[]}}`)} {
		got := x.Extract(html)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestExtractFirstPayloadOnly(t *testing.T) {
	html := page(`{"props":{"apolloState":{}}}`)
	assert.Equal(t, 2, strings.Count(html, "__NEXT_DATA__"))
	assert.Empty(t, NewExtractor(nil).Extract(html))
}
