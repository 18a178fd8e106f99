package util

import (
	"strings"
	"time"
)

// DayLayout is the calendar-day layout used by the store, the forms and the API.
const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD string as a UTC midnight. Returns (t, true) if it worked.
func ParseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DayLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// TruncateDay drops the clock part of t and moves it to UTC, keeping its calendar date.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the whole number of calendar days from start to t.
// Negative when t is before start. Works on Unix seconds since time.Duration
// saturates past roughly 292 years.
func DaysBetween(start, t time.Time) int {
	return int((TruncateDay(t).Unix() - TruncateDay(start).Unix()) / secondsPerDay)
}

// AddDays moves t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
