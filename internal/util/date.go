package util

import (
	"fmt"
	"time"
)

// DayLayout is the layout of day keys ("2006-01-02")
const DayLayout = "2006-01-02"

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// NextMidnight returns the start of the day after t's calendar day in loc.
func NextMidnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// DayKey formats t as a day key in loc. Two instants on the same local
// calendar day always share a key.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD string as midnight in loc.
func ParseDay(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateStr)
	}
	return t, nil
}

// LastNDays returns the n calendar days ending with t's day, oldest first.
func LastNDays(t time.Time, loc *time.Location, n int) []time.Time {
	local := t.In(loc)
	days := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, time.Date(local.Year(), local.Month(), local.Day()-i, 0, 0, 0, 0, loc))
	}
	return days
}

// DaysInMonth returns the number of days of t's month in loc.
func DaysInMonth(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month()+1, 0, 0, 0, 0, 0, loc).Day()
}

// MonthBounds returns the day keys of the first and last day of t's month in loc.
func MonthBounds(t time.Time, loc *time.Location) (string, string) {
	local := t.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	last := time.Date(local.Year(), local.Month()+1, 0, 0, 0, 0, 0, loc)
	return first.Format(DayLayout), last.Format(DayLayout)
}

// ShortDayLabel formats a day like "Mon, Jan 2".
func ShortDayLabel(t time.Time) string {
	return t.Format("Mon, Jan 2")
}
