// Package sweep holds the idempotent maintenance jobs that keep derived
// scheduling pointers fresh. Sweeps only rewrite derived state; ledger
// history is never touched. Each row commits independently, so an
// interrupted sweep resumes cleanly on the next run.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/household"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/recurrence"
	"github.com/moresby/homestead/internal/store"
)

// DefaultArchiveAfterDays is how long a completed punch list item stays
// visible before the archive sweep hides it.
const DefaultArchiveAfterDays = 7

type Sweeper struct {
	tasks     *store.TaskStore
	household *store.HouseholdStore
	clock     clock.Clock
	logger    *slog.Logger
}

func New(tasks *store.TaskStore, hh *store.HouseholdStore, clk clock.Clock, logger *slog.Logger) *Sweeper {
	return &Sweeper{tasks: tasks, household: hh, clock: clk, logger: logger}
}

// RefreshStaleRecurrences re-derives next-occurrence and next-due
// pointers across all profiles. Scheduled tasks with a null or past
// pointer are advanced from today; household pointers are recomputed from
// the most recent completion, which also repairs pointers left stale by
// an undone completion. Running the sweep twice changes nothing the
// second time.
func (s *Sweeper) RefreshStaleRecurrences(ctx context.Context) (int, error) {
	today := s.clock.Today()
	updated := 0

	scheduled, err := s.tasks.ListActiveScheduledAll()
	if err != nil {
		return updated, err
	}
	for _, t := range scheduled {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if t.NextOccurrenceDate != nil && !t.NextOccurrenceDate.Before(today) {
			continue
		}

		pattern, ok := recurrence.ParsePattern(
			t.RecurType, t.RecurInterval,
			intValue(t.RecurDayOfWeek), intValue(t.RecurDayOfMonth),
		)
		if !ok {
			continue
		}
		next, ok := recurrence.Next(pattern, today)
		if !ok {
			continue
		}
		if err := s.tasks.UpdateOccurrence(t.ID, t.LastOccurrenceDate, &next); err != nil {
			return updated, err
		}
		updated++
	}

	hh, err := s.household.List(false)
	if err != nil {
		return updated, err
	}
	for _, t := range hh {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if t.Frequency == model.FreqTodo {
			continue
		}

		last, err := s.household.LastCompletion(t.ID)
		if err != nil {
			return updated, err
		}

		var want *time.Time
		if last == nil {
			if t.NextDueDate != nil {
				continue
			}
			if due, ok := household.NextDue(t, today); ok {
				want = &due
			}
		} else {
			// Recompute purely from the completion log so a pointer left
			// behind by an undone completion converges back to the truth.
			base := t
			base.NextDueDate = nil
			if due, ok := household.AdvanceAfterCompletion(base, last.CompletedAt); ok {
				want = &due
			}
		}

		if want == nil || (t.NextDueDate != nil && t.NextDueDate.Equal(*want)) {
			continue
		}
		if err := s.household.UpdateNextDue(t.ID, want); err != nil {
			return updated, err
		}
		updated++
	}

	if updated > 0 {
		s.logger.Info("refreshed recurrence pointers", "updated", updated)
	}
	return updated, nil
}

// ArchiveOldCompleted archives punch list items completed more than
// afterDays ago.
func (s *Sweeper) ArchiveOldCompleted(ctx context.Context, afterDays int) (int, error) {
	now := s.clock.Now()
	cutoff := dates.AddDays(s.clock.Today(), -afterDays)

	tasks, err := s.tasks.ListArchivable(cutoff)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return archived, err
		}
		if err := s.tasks.SetArchived(t.ID, now); err != nil {
			return archived, err
		}
		archived++
	}

	if archived > 0 {
		s.logger.Info("archived completed punch list items", "archived", archived)
	}
	return archived, nil
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
