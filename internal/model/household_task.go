package model

import "time"

// Frequency is how often a household task recurs. Todo marks a one-time
// item that is satisfied by any completion.
type Frequency string

const (
	FreqWeekly    Frequency = "weekly"
	FreqBiweekly  Frequency = "biweekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqAnnual    Frequency = "annual"
	FreqTodo      Frequency = "todo"
)

// ScheduleMode selects how the next due date is derived after a completion.
type ScheduleMode string

const (
	// ModeCalendar anchors recurrence to fixed calendar slots; completing
	// early never pulls the schedule forward.
	ModeCalendar ScheduleMode = "calendar"
	// ModeRolling anchors recurrence to the completion date plus a fixed
	// per-frequency day offset, ignoring calendar anchors.
	ModeRolling ScheduleMode = "rolling"
)

// HouseholdTask is a shared chore. It has no owner: every profile sees the
// same list, and profiles only appear in completion attribution.
type HouseholdTask struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Icon         string       `json:"icon"`
	Frequency    Frequency    `json:"frequency"`
	ScheduleMode ScheduleMode `json:"schedule_mode"`

	// Calendar anchors; which ones apply depends on Frequency.
	DayOfWeek  *int `json:"day_of_week,omitempty"`  // 0=Monday..6=Sunday, weekly/biweekly
	DayOfMonth *int `json:"day_of_month,omitempty"` // 1-31, monthly
	Month      *int `json:"month,omitempty"`        // annual: 1-12; quarterly: 1-3 within quarter
	Day        *int `json:"day,omitempty"`          // 1-31, annual/quarterly

	DueDate     *time.Time `json:"due_date,omitempty"` // todo items only
	NextDueDate *time.Time `json:"next_due_date,omitempty"`

	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HouseholdCompletion is one append-only log entry: who finished a shared
// task and when. Done-ness is always derived from the most recent entry.
type HouseholdCompletion struct {
	ID              int64     `json:"id"`
	HouseholdTaskID int64     `json:"household_task_id"`
	CompletedAt     time.Time `json:"completed_at"`
	CompletedBy     int64     `json:"completed_by"`
	Notes           string    `json:"notes,omitempty"`
}
