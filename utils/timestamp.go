package utils

import (
	"regexp"
	"strings"
	"time"
)

// Layout for wall-clock reservation times and other zone-less timestamps the API sends.
const WallClockLayout = "2006-01-02T15:04:05"

var subMillis = regexp.MustCompile(`(\.\d{3})\d+`)

// timestampLayouts are tried in order after sub-millisecond digits are truncated.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses ISO-8601, space separated date-times and values carrying more than
// millisecond precision (truncated to 3 digits). Values without a zone are read as UTC so that
// the same wall-clock string always maps to the same instant.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = subMillis.ReplaceAllString(s, "$1")

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimestampMillis returns the epoch milliseconds of s, or 0 when s does not parse.
func TimestampMillis(s string) int64 {
	t, ok := ParseTimestamp(s)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}
