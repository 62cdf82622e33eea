package normalize

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order. The snapshot source emits
// millisecond RFC3339 ("2021-11-10T14:24:11.849Z"); the rest cover drifted
// payloads seen in practice.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a date field into a canonical UTC timestamp.
// ok is false when no layout matches; callers map that to null, never to a
// dropped row.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
