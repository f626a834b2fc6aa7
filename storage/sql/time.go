package sql

import (
	"strings"
	"time"
)

// timestampLayouts covers what SQLite CURRENT_TIMESTAMP, MySQL DATETIME and
// database/sql's time-to-string conversion hand back for the members columns.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04",
	"2006-01-02",
}

func timeFromString(in string) time.Time {
	in = strings.TrimSpace(in)
	if in == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, in, time.UTC); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
