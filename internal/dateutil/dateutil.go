// Package dateutil holds the local-calendar date math shared by progress
// charts and week navigation: Monday-start weeks, ISO week numbers, and the
// YYYY-MM-DD formatting used as bucket keys. All functions work on local
// calendar days and ignore the clock-time portion of their inputs.
package dateutil

import (
	"fmt"
	"math"
	"time"
)

const layout = "2006-01-02"

// FormatLocalDate renders a time as its local YYYY-MM-DD calendar day.
func FormatLocalDate(t time.Time) string {
	return t.Format(layout)
}

// ParseLocalDate parses a YYYY-MM-DD string into midnight local time. Inputs
// are expected to come from FormatLocalDate; arbitrary external strings should
// be validated by the caller.
func ParseLocalDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing local date %q: %w", s, err)
	}
	return t, nil
}

// Truncate drops the clock-time portion, returning midnight of the same local day.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonday returns midnight of the Monday beginning the week that
// contains t. Sunday belongs to the preceding week, so a Sunday maps six days
// back.
func StartOfMonday(t time.Time) time.Time {
	d := Truncate(t)
	diff := int(time.Monday - d.Weekday())
	if d.Weekday() == time.Sunday {
		diff = -6
	}
	return d.AddDate(0, 0, diff)
}

// ISOWeekNumber returns the ISO-8601 week number of t (weeks start Monday;
// week 1 contains the year's first Thursday).
func ISOWeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// WeekOffset returns the number of whole weeks from one week's Monday to
// another's. Both arguments are truncated to their own Monday first, so any
// day within a week may be passed.
func WeekOffset(start, current time.Time) int {
	a := StartOfMonday(start)
	b := StartOfMonday(current)
	days := roundDays(b.Sub(a))
	if days < 0 {
		// Round toward negative infinity so a week back is -1, not 0.
		return (days - 6) / 7
	}
	return days / 7
}

// roundDays converts a duration to whole days, tolerating the 23- and 25-hour
// days introduced by DST transitions.
func roundDays(d time.Duration) int {
	return int(math.Round(d.Hours() / 24))
}

// DaysBetween returns the inclusive day count of the range [start, end]:
// identical days count as 1. Clock time on either argument is ignored.
func DaysBetween(start, end time.Time) int {
	a := Truncate(start)
	b := Truncate(end)
	if b.Before(a) {
		a, b = b, a
	}
	return roundDays(b.Sub(a)) + 1
}
