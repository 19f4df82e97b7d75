// Package streak derives consecutive-completion run lengths from ledger
// history. Everything here is a pure read-side computation, cheap enough
// to run on every page view.
package streak

import (
	"time"

	"github.com/moresby/homestead/internal/dates"
)

// Global computes the current streak from completed dates sorted newest
// first. The streak is the run of consecutive calendar days ending at the
// most recent completed date; the first gap stops the count.
func Global(completed []time.Time) (int, *time.Time) {
	if len(completed) == 0 {
		return 0, nil
	}

	last := dates.FromTime(completed[0])
	count := 1
	want := dates.AddDays(last, -1)

	for _, d := range completed[1:] {
		if !dates.FromTime(d).Equal(want) {
			break
		}
		count++
		want = dates.AddDays(want, -1)
	}
	return count, &last
}

// ForTask computes a single task's streak from its checked dates sorted
// newest first. If more than one day has passed since the last check the
// streak is broken and reported as zero, but the last checked date is
// still returned.
func ForTask(checked []time.Time, today time.Time) (int, *time.Time) {
	if len(checked) == 0 {
		return 0, nil
	}

	last := dates.FromTime(checked[0])
	if dates.DaysBetween(last, dates.FromTime(today)) > 1 {
		return 0, &last
	}

	count, _ := Global(checked)
	return count, &last
}
