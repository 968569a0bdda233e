package feed

import (
	"time"
)

// TimestampLayout is the canonical stored form. Values compare correctly as
// plain strings, and "" sorts before every populated value.
const TimestampLayout = "2006-01-02 15:04:05"

// SourceTimestampLayout is the RFC 822 style layout RSS 2.0 mandates for
// pubDate and lastBuildDate.
const SourceTimestampLayout = time.RFC1123Z

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.UTC)
}

// normalizeTimestamp converts a raw feed date into canonical form. The fixed
// source layout is tried first; fallback is the value gofeed already parsed
// with its lenient date parser.
func normalizeTimestamp(raw string, parsed *time.Time) (string, bool) {
	if raw == "" {
		return "", false
	}
	if t, err := time.Parse(SourceTimestampLayout, raw); err == nil {
		return FormatTimestamp(t), true
	}
	if parsed != nil && !parsed.IsZero() {
		return FormatTimestamp(*parsed), true
	}
	return "", false
}
