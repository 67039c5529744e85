package store

import (
	"strconv"
	"strings"
	"time"
)

// Stored records come from other writers and are not always well formed.
// Every backend reads a bad field as its zero value instead of failing the
// whole list, so one broken record never hides the others.

// timeLayouts covers what SQLite and libsql hand back for TIMESTAMP columns,
// plus the ISO strings older writers stored in Mongo and YAML
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

// parseTime returns the zero time when s matches no known layout
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseFlag reads a boolean written as text. Anything unrecognized is false.
func parseFlag(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
