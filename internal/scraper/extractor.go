// Package scraper fetches the public event listings page and rebuilds event
// records from the Apollo cache embedded in its __NEXT_DATA__ script.
package scraper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/venuevibe/vibecheck/internal/logging"
)

// ErrPayloadNotFound is returned by Parse when the page has no
// __NEXT_DATA__ script block.
var ErrPayloadNotFound = errors.New("scraper: __NEXT_DATA__ payload not found")

// listingPrefix selects the cache entries that become listings.
const listingPrefix = "EventListing:"

// nextDataPattern matches the first embedded payload. The group is
// non-greedy so it stops at the first closing tag.
var nextDataPattern = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__" type="application/json">(.*?)</script>`)

// Entity is a referenced cache entry with its body inlined.
type Entity struct {
	Key  string          `json:"key"`
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// EventData is the event a listing points at with artists and venue
// resolved.
type EventData struct {
	Key       string   `json:"key"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Artists   []Entity `json:"artists"`
	Venue     Entity   `json:"venue"`
}

// Listing is one scraped listing after reference resolution.
type Listing struct {
	Key   string    `json:"key"`
	ID    string    `json:"id"`
	Event EventData `json:"event"`
}

// ref is a pointer to another cache entry.
type ref struct {
	Ref string `json:"__ref"`
}

type listingBody struct {
	ID    any  `json:"id"`
	Event *ref `json:"event"`
}

type eventBody struct {
	ID        any    `json:"id"`
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Artists   []*ref `json:"artists"`
	Venue     *ref   `json:"venue"`
}

type namedBody struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

type nextData struct {
	Props struct {
		ApolloState json.RawMessage `json:"apolloState"`
	} `json:"props"`
}

// cacheEntry keeps document order, which map iteration would lose.
type cacheEntry struct {
	key  string
	body json.RawMessage
}

// Extractor turns listings pages into Listing records.
type Extractor struct {
	log *logging.Logger
}

func NewExtractor(log *logging.Logger) *Extractor {
	if log == nil {
		log = logging.Nop()
	}
	return &Extractor{log: log}
}

// Extract returns the listings found in html in document order. A page
// without a payload, or with one that does not parse, yields an empty slice.
func (x *Extractor) Extract(html string) []Listing {
	listings, err := x.Parse(html)
	if err != nil {
		x.log.Warnf("extract: %v", err)
		return []Listing{}
	}
	return listings
}

// Parse is Extract with the payload errors surfaced: ErrPayloadNotFound when
// the script block is missing, a wrapped JSON error when it does not parse.
// Listings whose reference chain is broken are skipped and never cause an
// error.
func (x *Extractor) Parse(html string) ([]Listing, error) {
	m := nextDataPattern.FindStringSubmatch(html)
	if m == nil {
		return nil, ErrPayloadNotFound
	}
	var doc nextData
	if err := json.Unmarshal([]byte(m[1]), &doc); err != nil {
		return nil, fmt.Errorf("scraper: parse __NEXT_DATA__: %w", err)
	}
	raw := bytes.TrimSpace(doc.Props.ApolloState)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		x.log.Infof("extract: payload has no apolloState")
		return []Listing{}, nil
	}
	entries, err := orderedEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("scraper: parse apolloState: %w", err)
	}

	index := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		index[e.key] = e.body
	}

	out := make([]Listing, 0)
	skipped := 0
	for _, e := range entries {
		if !strings.HasPrefix(e.key, listingPrefix) {
			continue
		}
		l, err := resolveListing(e, index)
		if err != nil {
			skipped++
			x.log.Debugf("extract: skip %s: %v", e.key, err)
			continue
		}
		out = append(out, l)
	}
	if skipped > 0 {
		x.log.Warnf("extract: skipped %d listing(s) with broken references", skipped)
	}
	return out, nil
}

func orderedEntries(raw json.RawMessage) ([]cacheEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var out []cacheEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}
		var body json.RawMessage
		if err := dec.Decode(&body); err != nil {
			return nil, err
		}
		out = append(out, cacheEntry{key: key, body: body})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveListing(e cacheEntry, index map[string]json.RawMessage) (Listing, error) {
	var lb listingBody
	if err := json.Unmarshal(e.body, &lb); err != nil {
		return Listing{}, fmt.Errorf("listing body: %w", err)
	}
	if lb.Event == nil || lb.Event.Ref == "" {
		return Listing{}, errors.New("listing has no event reference")
	}
	evRaw, ok := index[lb.Event.Ref]
	if !ok {
		return Listing{}, fmt.Errorf("missing %s", lb.Event.Ref)
	}
	var eb eventBody
	if err := json.Unmarshal(evRaw, &eb); err != nil {
		return Listing{}, fmt.Errorf("event body %s: %w", lb.Event.Ref, err)
	}

	artists := make([]Entity, 0, len(eb.Artists))
	for i, a := range eb.Artists {
		if a == nil || a.Ref == "" {
			return Listing{}, fmt.Errorf("artist %d has no reference", i)
		}
		ent, err := resolveEntity(a.Ref, index)
		if err != nil {
			return Listing{}, err
		}
		artists = append(artists, ent)
	}
	if eb.Venue == nil || eb.Venue.Ref == "" {
		return Listing{}, errors.New("event has no venue reference")
	}
	venue, err := resolveEntity(eb.Venue.Ref, index)
	if err != nil {
		return Listing{}, err
	}

	id := idString(lb.ID)
	if id == "" {
		id = strings.TrimPrefix(e.key, listingPrefix)
	}
	return Listing{
		Key: e.key,
		ID:  id,
		Event: EventData{
			Key:       lb.Event.Ref,
			ID:        idString(eb.ID),
			Title:     eb.Title,
			StartTime: eb.StartTime,
			EndTime:   eb.EndTime,
			Artists:   artists,
			Venue:     venue,
		},
	}, nil
}

func resolveEntity(key string, index map[string]json.RawMessage) (Entity, error) {
	raw, ok := index[key]
	if !ok {
		return Entity{}, fmt.Errorf("missing %s", key)
	}
	var nb namedBody
	if err := json.Unmarshal(raw, &nb); err != nil {
		return Entity{}, fmt.Errorf("entity %s: %w", key, err)
	}
	return Entity{Key: key, ID: idString(nb.ID), Name: nb.Name, Data: raw}, nil
}

// idString renders ids that the source sends either as strings or numbers.
func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
