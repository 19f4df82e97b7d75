// Package clock provides the service's notion of the current time. All
// date comparisons in the tracker are calendar dates in the configured
// time zone, never UTC instants, so "today" must come from here.
package clock

import (
	"time"

	"github.com/moresby/homestead/internal/dates"
)

// Clock yields the current instant and calendar date.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type realClock struct {
	loc *time.Location
}

// New returns a Clock for the given time zone.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return realClock{loc: loc}
}

func (c realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c realClock) Today() time.Time {
	return dates.FromTime(c.Now())
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant }

func (f Fixed) Today() time.Time { return dates.FromTime(f.Instant) }
