package timetricks

import (
	"strings"
	"time"
)

const (
	dayFormat   = "2006-01-02"
	stampFormat = "2006-01-02T15:04"
)

// DateOf returns the calendar date of a NOAA timestamp such as
// "2024-01-01 05:00", which is everything before the first space.
func DateOf(stamp string) string {
	if i := strings.IndexByte(stamp, ' '); i >= 0 {
		return stamp[:i]
	}
	return stamp
}

// ParseStamp reads a NOAA timestamp as a wall clock time in loc.
func ParseStamp(stamp string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(stampFormat, strings.Replace(stamp, " ", "T", 1), loc)
}

func SameDay(t time.Time, t2 time.Time) bool {
	return t.Format(dayFormat) == t2.Format(dayFormat)
}

// TrimClock returns midnight of t's calendar day in t's location.
func TrimClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// UniqueDay returns a string representation of t that is unique by the day.
// It matches DateOf for the same calendar day.
func UniqueDay(t time.Time) string {
	return t.Format(dayFormat)
}
