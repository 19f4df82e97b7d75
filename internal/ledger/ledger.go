// Package ledger is the mutation side of the tracker: it materializes
// checks, toggles them, advances recurrence pointers, and keeps the
// per-day aggregate status consistent with the underlying checks.
//
// Every aggregate write here is a full re-derivation from persisted fact,
// never an increment, so replaying any mutation converges to the same
// state.
package ledger

import (
	"errors"
	"log/slog"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/household"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/recurrence"
	"github.com/moresby/homestead/internal/store"
)

// ErrNotFound is returned when a task doesn't exist or doesn't belong to
// the requesting profile. Callers get no partial state either way.
var ErrNotFound = errors.New("not found")

type Ledger struct {
	tasks     *store.TaskStore
	checks    *store.CheckStore
	household *store.HouseholdStore
	metrics   *store.MetricStore
	clock     clock.Clock
	logger    *slog.Logger
}

func New(tasks *store.TaskStore, checks *store.CheckStore, hh *store.HouseholdStore, metrics *store.MetricStore, clk clock.Clock, logger *slog.Logger) *Ledger {
	return &Ledger{
		tasks:     tasks,
		checks:    checks,
		household: hh,
		metrics:   metrics,
		clock:     clk,
		logger:    logger,
	}
}

// EnsureChecks materializes check rows for every active daily task, plus
// every active scheduled task whose next occurrence lands on the date.
// Idempotent: existing rows are never touched, so calling this on every
// page load is safe.
func (l *Ledger) EnsureChecks(date time.Time, profileID int64) error {
	active, err := l.tasks.ListActive(profileID)
	if err != nil {
		return err
	}
	for _, t := range active {
		if t.Kind != model.KindDaily {
			continue
		}
		if err := l.checks.CreateIfMissing(date, t.ID, profileID); err != nil {
			return err
		}
	}

	due, err := l.tasks.ListDueScheduled(profileID, date)
	if err != nil {
		return err
	}
	for _, t := range due {
		if err := l.checks.CreateIfMissing(date, t.ID, profileID); err != nil {
			return err
		}
	}
	return nil
}

// SetCheck creates or updates the check for (date, task). Checking a
// scheduled task advances its recurrence pointers; any non-punch-list
// mutation triggers a full recompute of the day's status.
func (l *Ledger) SetCheck(date time.Time, taskID int64, checked bool, profileID int64) (*model.TaskCheck, error) {
	task, err := l.tasks.GetForProfile(taskID, profileID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}

	var checkedAt *time.Time
	if checked {
		now := l.clock.Now()
		checkedAt = &now
	}

	check, err := l.checks.Upsert(date, taskID, profileID, checked, checkedAt)
	if err != nil {
		return nil, err
	}

	if task.Kind == model.KindScheduled && checked {
		if err := l.advanceScheduled(task, date); err != nil {
			return nil, err
		}
	}

	if task.Kind != model.KindPunchList {
		if err := l.RecomputeDailyStatus(date, profileID); err != nil {
			return nil, err
		}
	}
	return check, nil
}

// advanceScheduled moves a scheduled task past a completed occurrence.
// The calculation is anchored to the prior next-occurrence pointer, so
// checking early does not reshape the schedule.
func (l *Ledger) advanceScheduled(task *model.Task, date time.Time) error {
	completed := dates.FromTime(date)

	pattern, ok := recurrence.ParsePattern(
		task.RecurType, task.RecurInterval,
		intValue(task.RecurDayOfWeek), intValue(task.RecurDayOfMonth),
	)
	if !ok {
		l.logger.Warn("scheduled task has no usable recurrence pattern",
			"task_id", task.ID, "recur_type", task.RecurType)
		return l.tasks.UpdateOccurrence(task.ID, &completed, nil)
	}

	base := completed
	if task.NextOccurrenceDate != nil {
		base = dates.FromTime(*task.NextOccurrenceDate)
	}

	var nextPtr *time.Time
	if next, ok := recurrence.Next(pattern, base); ok {
		nextPtr = &next
	}
	return l.tasks.UpdateOccurrence(task.ID, &completed, nextPtr)
}

// RecomputeDailyStatus re-derives the day's completion flag from scratch:
// collect the required set applicable to the date, collect the checked
// set, and compare. An empty required set makes the day vacuously
// complete. The existing completion timestamp is preserved when the day
// was already complete.
func (l *Ledger) RecomputeDailyStatus(date time.Time, profileID int64) error {
	active, err := l.tasks.ListActive(profileID)
	if err != nil {
		return err
	}

	required := make(map[int64]struct{})
	for _, t := range active {
		if !t.IsRequired {
			continue
		}
		switch t.Kind {
		case model.KindDaily:
			required[t.ID] = struct{}{}
		case model.KindScheduled:
			if t.NextOccurrenceDate != nil && dates.SameDay(*t.NextOccurrenceDate, date) {
				required[t.ID] = struct{}{}
			}
		}
	}

	checks, err := l.checks.ListForDate(date, profileID)
	if err != nil {
		return err
	}
	checked := make(map[int64]struct{})
	for _, c := range checks {
		if c.Checked {
			checked[c.TaskID] = struct{}{}
		}
	}

	complete := true
	for id := range required {
		if _, ok := checked[id]; !ok {
			complete = false
			break
		}
	}

	existing, err := l.checks.GetDailyStatus(date, profileID)
	if err != nil {
		return err
	}

	if complete {
		if existing != nil && existing.CompletedAt != nil {
			return nil
		}
		now := l.clock.Now()
		return l.checks.SetDailyStatus(date, profileID, &now)
	}
	if existing != nil && existing.CompletedAt != nil {
		return l.checks.SetDailyStatus(date, profileID, nil)
	}
	return nil
}

// CompleteHousehold appends a completion log entry and advances the
// task's cached next-due pointer per its schedule mode.
func (l *Ledger) CompleteHousehold(taskID, profileID int64, notes string) (*model.HouseholdCompletion, error) {
	task, err := l.household.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}

	now := l.clock.Now()
	completion, err := l.household.CreateCompletion(taskID, profileID, now, notes)
	if err != nil {
		return nil, err
	}

	// Todo items are satisfied by the completion itself; there is no next
	// occurrence to schedule.
	if task.Frequency != model.FreqTodo {
		if next, ok := household.AdvanceAfterCompletion(*task, now); ok {
			if err := l.household.UpdateNextDue(taskID, &next); err != nil {
				return nil, err
			}
		}
	}
	return completion, nil
}

// UndoLastHouseholdCompletion deletes only the single most recent log
// entry. The cached next_due_date is intentionally left as-is; the next
// completion or maintenance sweep re-derives it from the remaining
// history.
func (l *Ledger) UndoLastHouseholdCompletion(taskID int64) error {
	last, err := l.household.LastCompletion(taskID)
	if err != nil {
		return err
	}
	if last == nil {
		return ErrNotFound
	}
	return l.household.DeleteCompletion(last.ID)
}

// CompletePunchList marks a one-shot item done and records a checked
// check for today. Punch list items never participate in the daily
// aggregate, so no status recompute happens.
func (l *Ledger) CompletePunchList(taskID, profileID int64) (*model.Task, error) {
	task, err := l.tasks.GetForProfile(taskID, profileID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.Kind != model.KindPunchList {
		return nil, ErrNotFound
	}

	now := l.clock.Now()
	today := l.clock.Today()

	if err := l.tasks.SetCompleted(taskID, &now); err != nil {
		return nil, err
	}
	if _, err := l.checks.Upsert(today, taskID, profileID, true, &now); err != nil {
		return nil, err
	}
	return l.tasks.GetByID(taskID)
}

// UncompletePunchList reverses a same-day punch list completion.
func (l *Ledger) UncompletePunchList(taskID, profileID int64) (*model.Task, error) {
	task, err := l.tasks.GetForProfile(taskID, profileID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.Kind != model.KindPunchList {
		return nil, ErrNotFound
	}

	today := l.clock.Today()
	if err := l.tasks.SetCompleted(taskID, nil); err != nil {
		return nil, err
	}
	if _, err := l.checks.Upsert(today, taskID, profileID, false, nil); err != nil {
		return nil, err
	}
	return l.tasks.GetByID(taskID)
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
