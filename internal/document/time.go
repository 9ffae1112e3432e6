package document

import (
	"fmt"
	"time"
)

// Timestamps are stored as RFC 3339 strings with nanoseconds. Stores written
// by older versions used ISO 8601 without a zone; those parse as local time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseTime parses a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("parse time %q: unsupported layout", s)
}
