package scraper

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// Eastern is the zone the listings site publishes wall-clock times in.
const Eastern = "America/New_York"

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseLocalTime reads an ISO-8601 timestamp as wall-clock time in loc. Any
// trailing "Z" or numeric offset is discarded, not applied.
func ParseLocalTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	v := stripOffset(strings.TrimSpace(s))
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("scraper: unrecognised time %q", s)
}

func stripOffset(s string) string {
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		return s[:len(s)-1]
	}
	// Offsets only appear after the time part.
	t := strings.IndexByte(s, 'T')
	if t < 0 {
		return s
	}
	if i := strings.LastIndexAny(s[t:], "+-"); i >= 0 {
		return s[:t+i]
	}
	return s
}
