// Package dates handles the calendar-date values the tracker is built on.
// A "date" here is always a time.Time at midnight UTC regardless of the
// service time zone; the zone only matters when deciding what "today" is.
package dates

import "time"

// Layout is the storage format for calendar dates.
const Layout = "2006-01-02"

// New returns the canonical representation of a calendar date.
func New(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FromTime collapses an instant to the calendar date it falls on,
// in the instant's own location.
func FromTime(t time.Time) time.Time {
	return New(t.Year(), t.Month(), t.Day())
}

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// AddDays returns the date n days after d.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(FromTime(b).Sub(FromTime(a)).Hours() / 24)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidDay reports whether day exists in the given month.
func ValidDay(year int, month time.Month, day int) bool {
	return day >= 1 && day <= DaysInMonth(year, month)
}

// SameDay reports whether two instants fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return FromTime(a).Equal(FromTime(b))
}
