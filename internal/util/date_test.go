package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestDayKey_UsesLocation(t *testing.T) {
	kolkata := mustLoad(t, "Asia/Kolkata")

	// 20:00 UTC is already the next day in India
	instant := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-10", DayKey(instant, time.UTC))
	assert.Equal(t, "2024-03-11", DayKey(instant, kolkata))
}

func TestNextMidnight(t *testing.T) {
	loc := mustLoad(t, "Europe/Oslo")
	now := time.Date(2024, 12, 31, 23, 59, 0, 0, loc)

	next := NextMidnight(now, loc)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), next)
	assert.True(t, StartOfDay(now, loc).Before(next))
}

func TestLastNDays(t *testing.T) {
	now := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)

	days := LastNDays(now, time.UTC, 7)

	require.Len(t, days, 7)
	assert.Equal(t, "2024-02-25", days[0].Format(DayLayout))
	assert.Equal(t, "2024-02-29", days[4].Format(DayLayout))
	assert.Equal(t, "2024-03-02", days[6].Format(DayLayout))
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{name: "leap february", date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), want: 29},
		{name: "plain february", date: time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), want: 28},
		{name: "april", date: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), want: 30},
		{name: "december", date: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysInMonth(tt.date, time.UTC))
		})
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, "2024-02-01", first)
	assert.Equal(t, "2024-02-29", last)
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2024-05-06", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDay("06/05/2024", time.UTC)
	assert.Error(t, err)
}

func TestShortDayLabel(t *testing.T) {
	assert.Equal(t, "Mon, Jan 2", ShortDayLabel(time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC)))
}
