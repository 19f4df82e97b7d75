package household

import (
	"time"

	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/model"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// TaskWithStatus is a household task enriched for display: derived status,
// the due date backing it, and attribution for the latest completion.
type TaskWithStatus struct {
	model.HouseholdTask
	Status              Status     `json:"status"`
	CurrentDue          *time.Time `json:"current_due,omitempty"`
	LastCompletedAt     *time.Time `json:"last_completed_at,omitempty"`
	LastCompletedBy     *int64     `json:"last_completed_by,omitempty"`
	LastCompletedByName string     `json:"last_completed_by_name,omitempty"`
	DaysSinceCompletion *int       `json:"days_since_completion,omitempty"`
}

// ComputeStatus derives a task's state from its most recent completion.
//
// A recurring task with no completion history is pending (due), never
// overdue: there is no reference point to have missed. Once completed, the
// task is due again when today reaches the next due date, and overdue only
// when the completion happened strictly before that date. Todo tasks are
// satisfied by any completion and overdue only with an explicit past due
// date and no completion.
func ComputeStatus(t model.HouseholdTask, lastCompletion *time.Time, today time.Time) (Status, *time.Time) {
	today = dates.FromTime(today)

	if t.Frequency == model.FreqTodo {
		if lastCompletion != nil {
			return StatusCompleted, t.DueDate
		}
		if t.DueDate != nil && today.After(dates.FromTime(*t.DueDate)) {
			return StatusOverdue, t.DueDate
		}
		return StatusPending, t.DueDate
	}

	if lastCompletion == nil {
		return StatusPending, t.NextDueDate
	}

	completedDate := dates.FromTime(*lastCompletion)
	next := t.NextDueDate
	if next == nil {
		// Stale pointer (e.g. after an undone completion): derive it.
		if due, ok := AdvanceAfterCompletion(t, completedDate); ok {
			next = &due
		}
	}
	if next == nil {
		return StatusCompleted, nil
	}

	due := dates.FromTime(*next)
	if today.Before(due) {
		return StatusCompleted, &due
	}
	if completedDate.Before(due) {
		return StatusOverdue, &due
	}
	return StatusPending, &due
}

// IsDue reports whether the task needs doing as of today.
func IsDue(t model.HouseholdTask, lastCompletion *time.Time, today time.Time) bool {
	s, _ := ComputeStatus(t, lastCompletion, today)
	return s == StatusPending || s == StatusOverdue
}

// IsOverdue reports whether the task's last due window was missed.
func IsOverdue(t model.HouseholdTask, lastCompletion *time.Time, today time.Time) bool {
	s, _ := ComputeStatus(t, lastCompletion, today)
	return s == StatusOverdue
}
