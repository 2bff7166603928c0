// Package calendar converts instants into the clinic's local calendar day.
//
// A day is represented as a time.Time at 00:00 UTC of the local y/m/d, which is
// also how a SQL date column scans back.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Day truncates t to its calendar date in t's own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now as seen in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	return Day(now.In(loc))
}

// Parse accepts YYYY-MM-DD or "today".
func Parse(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "today") {
		return Today(now, loc), nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}

	return t, nil
}

// Clock is the source of "now" for the services; tests pin it.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}

	return c()
}
