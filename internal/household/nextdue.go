// Package household holds the shared-chore scheduling logic: next-due
// calculation for the calendar frequencies and the status derivation that
// turns a task plus its latest completion into due/overdue state.
package household

import (
	"time"

	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/recurrence"
)

// rollingOffsets are the fixed day offsets applied in rolling mode, where
// calendar anchors are ignored entirely.
var rollingOffsets = map[model.Frequency]int{
	model.FreqWeekly:    7,
	model.FreqBiweekly:  14,
	model.FreqMonthly:   30,
	model.FreqQuarterly: 90,
	model.FreqAnnual:    365,
}

// NextDue returns the first calendar-anchored occurrence on or after from.
// Todo tasks return their literal due date (none if unset). A task missing
// its anchor configuration yields from itself so the caller always ends up
// with a concrete date.
func NextDue(t model.HouseholdTask, from time.Time) (time.Time, bool) {
	from = dates.FromTime(from)

	switch t.Frequency {
	case model.FreqTodo:
		if t.DueDate == nil {
			return time.Time{}, false
		}
		return dates.FromTime(*t.DueDate), true

	case model.FreqWeekly, model.FreqBiweekly:
		if t.DayOfWeek == nil {
			return from, true
		}
		target := recurrence.WeekdayFromIndex(*t.DayOfWeek)
		ahead := (int(target) - int(from.Weekday()) + 7) % 7
		return dates.AddDays(from, ahead), true

	case model.FreqMonthly:
		if t.DayOfMonth == nil {
			return from, true
		}
		day := *t.DayOfMonth
		year, month := from.Year(), from.Month()
		// Search forward, skipping months where the day doesn't exist.
		for i := 0; i < 48; i++ {
			if dates.ValidDay(year, month, day) {
				if cand := dates.New(year, month, day); !cand.Before(from) {
					return cand, true
				}
			}
			month++
			if month > 12 {
				month = 1
				year++
			}
		}
		return from, true

	case model.FreqQuarterly:
		if t.Month == nil || t.Day == nil {
			return from, true
		}
		// Month holds a 1-3 offset within the quarter; quarters start at
		// January, April, July, October.
		offset, day := *t.Month, *t.Day
		quarterStart := ((int(from.Month())-1)/3)*3 + 1
		year := from.Year()
		for i := 0; i < 4; i++ {
			m, y := quarterStart+offset-1, year
			for m > 12 {
				m -= 12
				y++
			}
			if dates.ValidDay(y, time.Month(m), day) {
				if cand := dates.New(y, time.Month(m), day); !cand.Before(from) {
					return cand, true
				}
			}
			quarterStart += 3
			if quarterStart > 12 {
				quarterStart -= 12
				year++
			}
		}
		return from, true

	case model.FreqAnnual:
		if t.Month == nil || t.Day == nil {
			return from, true
		}
		month, day := time.Month(*t.Month), *t.Day
		for _, y := range []int{from.Year(), from.Year() + 1} {
			if dates.ValidDay(y, month, day) {
				if cand := dates.New(y, month, day); !cand.Before(from) {
					return cand, true
				}
			}
		}
		// Unreachable for any (month, day) that exists in some year, but
		// the calculator must still terminate with a date.
		return from, true
	}

	return time.Time{}, false
}

// RollingNextDue returns the completion date plus the frequency's fixed
// offset. Todo tasks have no rolling schedule.
func RollingNextDue(freq model.Frequency, completed time.Time) (time.Time, bool) {
	offset, ok := rollingOffsets[freq]
	if !ok {
		return time.Time{}, false
	}
	return dates.AddDays(dates.FromTime(completed), offset), true
}

// AdvanceAfterCompletion computes the next due date after a completion,
// honoring the task's schedule mode.
//
// Calendar mode anchors to the previous due slot: the reference date is the
// prior next-due pointer (or the completion date if none existed), and the
// slot is only consumed once the completion reaches it, so completing early
// leaves the original slot in place.
func AdvanceAfterCompletion(t model.HouseholdTask, completed time.Time) (time.Time, bool) {
	completedDate := dates.FromTime(completed)

	if t.ScheduleMode == model.ModeRolling {
		return RollingNextDue(t.Frequency, completedDate)
	}

	from := dates.AddDays(completedDate, 1)
	if t.NextDueDate != nil && t.NextDueDate.After(from) {
		from = dates.FromTime(*t.NextDueDate)
	}
	return NextDue(t, from)
}
