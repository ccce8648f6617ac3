package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// It is used by the service layers to determine "today" before calling the
// prediction and expiry functions.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today returns the calendar date of c.Now() at midnight, in its own location.
// Expiry is a matter of the household's local calendar, not of UTC instants.
func Today(c Clock) time.Time {
	return calendarDay(c.Now())
}
