package service

import "time"

// DateOnly strips the clock from a timestamp, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekBounds computes the canonical planning week for a date: the
// Monday–Friday span containing it, or the single day itself for
// Saturday/Sunday (isolated weekend plans).
//
// These bounds are only computed when a planning is first created; once a
// planning exists its stored boundaries are authoritative and must be
// reused, never re-derived; recomputing per item silently splits a week's
// itinerary across duplicate plannings.
func WeekBounds(date time.Time) (start, end time.Time) {
	d := DateOnly(date)
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return d, d
	default:
		offset := (int(d.Weekday()) + 6) % 7 // Monday=0 … Friday=4
		monday := d.AddDate(0, 0, -offset)
		return monday, monday.AddDate(0, 0, 4)
	}
}

// SameDate reports whether two timestamps fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// withinBounds reports start ≤ d ≤ end comparing dates only.
func withinBounds(d, start, end time.Time) bool {
	dd, ds, de := DateOnly(d), DateOnly(start), DateOnly(end)
	return !dd.Before(ds) && !dd.After(de)
}
