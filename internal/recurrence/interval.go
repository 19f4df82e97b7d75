// Package recurrence computes the next occurrence of interval-recurring
// personal tasks. Calculations are pure: callers decide which reference
// date to advance from and where the result is stored.
package recurrence

import (
	"time"

	"github.com/moresby/homestead/internal/dates"
)

type PatternKind int

const (
	EveryNDays PatternKind = iota
	WeeklyOn
	MonthlyOn
)

var kindFromName = map[string]PatternKind{
	"days":    EveryNDays,
	"weekly":  WeeklyOn,
	"monthly": MonthlyOn,
}

var kindNames = map[PatternKind]string{
	EveryNDays: "days",
	WeeklyOn:   "weekly",
	MonthlyOn:  "monthly",
}

// Pattern describes an interval recurrence. Each kind uses only the fields
// it needs: Weekday for WeeklyOn, DayOfMonth for MonthlyOn.
type Pattern struct {
	Kind       PatternKind
	Interval   int // >= 1
	Weekday    time.Weekday
	DayOfMonth int
}

// ParsePattern maps stored recurrence columns to a Pattern. The weekday
// index uses 0=Monday through 6=Sunday. An unknown type name reports
// ok=false, which callers treat as "no recurrence".
func ParsePattern(typ string, interval int, dayOfWeek, dayOfMonth int) (Pattern, bool) {
	kind, ok := kindFromName[typ]
	if !ok {
		return Pattern{}, false
	}
	if interval < 1 {
		interval = 1
	}
	return Pattern{
		Kind:       kind,
		Interval:   interval,
		Weekday:    WeekdayFromIndex(dayOfWeek),
		DayOfMonth: dayOfMonth,
	}, true
}

// String returns the stored name for a pattern kind.
func (k PatternKind) String() string {
	return kindNames[k]
}

// WeekdayFromIndex converts a stored 0=Monday..6=Sunday index to a
// time.Weekday.
func WeekdayFromIndex(i int) time.Weekday {
	return time.Weekday((i + 1) % 7)
}

// WeekdayIndex converts a time.Weekday to the stored 0=Monday..6=Sunday
// index.
func WeekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Next returns the occurrence after from. It never returns from itself:
// a weekly pattern evaluated on its own weekday advances a full cycle.
// Invalid day-of-month values are clamped to the destination month,
// never rejected.
func Next(p Pattern, from time.Time) (time.Time, bool) {
	from = dates.FromTime(from)

	switch p.Kind {
	case EveryNDays:
		return dates.AddDays(from, p.Interval), true

	case WeeklyOn:
		ahead := (int(p.Weekday) - int(from.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7 * p.Interval
		} else {
			ahead += 7 * (p.Interval - 1)
		}
		return dates.AddDays(from, ahead), true

	case MonthlyOn:
		month := int(from.Month()) + p.Interval
		year := from.Year()
		for month > 12 {
			month -= 12
			year++
		}
		day := p.DayOfMonth
		if day < 1 {
			day = 1
		}
		if last := dates.DaysInMonth(year, time.Month(month)); day > last {
			day = last
		}
		return dates.New(year, time.Month(month), day), true
	}

	return time.Time{}, false
}
