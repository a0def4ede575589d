package analysis

import (
	"fmt"
	"time"
)

// TimestampError reports a segment timestamp that could not be parsed.
// It aborts the whole query.
type TimestampError struct {
	Index int    // Position of the segment in the dataset
	Field string // startTime or endTime
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("segment %d: invalid %s %q: %v", e.Index, e.Field, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}

// ISO-8601 forms seen in exports: seconds optional, offset as
// +hh:mm, +hhmm, +hh or Z. Timestamps without an offset are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04-0700",
	"2006-01-02T15:04Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseTimestamp parses an ISO-8601 timestamp and normalizes it to UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// civilDate packs the calendar date of t (in its own location) as yyyymmdd
func civilDate(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
