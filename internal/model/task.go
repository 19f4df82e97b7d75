package model

import "time"

// TaskKind distinguishes the three personal obligation families.
type TaskKind string

const (
	KindDaily     TaskKind = "daily"
	KindScheduled TaskKind = "scheduled"
	KindPunchList TaskKind = "punch_list"
)

// GoalOperator compares a metric sample against a task's goal value.
type GoalOperator string

const (
	OpGTE GoalOperator = "gte"
	OpLTE GoalOperator = "lte"
	OpEQ  GoalOperator = "eq"
)

// Task is a personal obligation owned by a profile.
//
// Recurrence fields (RecurType through NextOccurrenceDate) are only set for
// scheduled tasks; DueDate/CompletedAt/ArchivedAt only for punch list items.
type Task struct {
	ID         int64    `json:"id"`
	ProfileID  int64    `json:"profile_id"`
	Title      string   `json:"title"`
	Icon       string   `json:"icon"`
	Kind       TaskKind `json:"kind"`
	IsRequired bool     `json:"is_required"`
	IsActive   bool     `json:"is_active"`
	SortOrder  int      `json:"sort_order"`

	RecurType          string     `json:"recur_type,omitempty"`
	RecurInterval      int        `json:"recur_interval,omitempty"`
	RecurDayOfWeek     *int       `json:"recur_day_of_week,omitempty"`
	RecurDayOfMonth    *int       `json:"recur_day_of_month,omitempty"`
	LastOccurrenceDate *time.Time `json:"last_occurrence_date,omitempty"`
	NextOccurrenceDate *time.Time `json:"next_occurrence_date,omitempty"`

	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`

	GoalMetricType string       `json:"goal_metric_type,omitempty"`
	GoalValue      *float64     `json:"goal_value,omitempty"`
	GoalOperator   GoalOperator `json:"goal_operator,omitempty"`
	GoalAutoCheck  bool         `json:"goal_auto_check"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
