package model

import "time"

// TaskCheck records whether a task was done on a particular date.
// Keyed by (date, task); the profile is carried for ownership filtering.
type TaskCheck struct {
	Date      time.Time  `json:"date"`
	TaskID    int64      `json:"task_id"`
	ProfileID int64      `json:"profile_id"`
	Checked   bool       `json:"checked"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

// DailyStatus is the derived per-date aggregate. CompletedAt is non-nil
// exactly when every active, required, date-applicable task had a checked
// TaskCheck on that date.
type DailyStatus struct {
	Date        time.Time  `json:"date"`
	ProfileID   int64      `json:"profile_id"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
