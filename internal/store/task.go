package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, profile_id, title, icon, kind, is_required, is_active, sort_order,
	recur_type, recur_interval, recur_day_of_week, recur_day_of_month,
	last_occurrence_date, next_occurrence_date, due_date, completed_at, archived_at,
	goal_metric_type, goal_value, goal_operator, goal_auto_check, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var recurType, goalMetric, goalOp sql.NullString
	var recurInterval sql.NullInt64
	var recurDOW, recurDOM sql.NullInt64
	var lastOcc, nextOcc, dueDate sql.NullString
	var completedAt, archivedAt sql.NullTime
	var goalValue sql.NullFloat64

	err := scanner.Scan(
		&t.ID, &t.ProfileID, &t.Title, &t.Icon, &t.Kind, &t.IsRequired, &t.IsActive, &t.SortOrder,
		&recurType, &recurInterval, &recurDOW, &recurDOM,
		&lastOcc, &nextOcc, &dueDate, &completedAt, &archivedAt,
		&goalMetric, &goalValue, &goalOp, &t.GoalAutoCheck, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.RecurType = recurType.String
	t.RecurInterval = int(recurInterval.Int64)
	t.RecurDayOfWeek = scanInt(recurDOW)
	t.RecurDayOfMonth = scanInt(recurDOM)
	if t.LastOccurrenceDate, err = scanDate(lastOcc); err != nil {
		return nil, err
	}
	if t.NextOccurrenceDate, err = scanDate(nextOcc); err != nil {
		return nil, err
	}
	if t.DueDate, err = scanDate(dueDate); err != nil {
		return nil, err
	}
	t.CompletedAt = scanTime(completedAt)
	t.ArchivedAt = scanTime(archivedAt)
	t.GoalMetricType = goalMetric.String
	if goalValue.Valid {
		v := goalValue.Float64
		t.GoalValue = &v
	}
	t.GoalOperator = model.GoalOperator(goalOp.String)
	return &t, nil
}

func (s *TaskStore) queryTasks(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Create(t model.Task) (*model.Task, error) {
	var goalValue any
	if t.GoalValue != nil {
		goalValue = *t.GoalValue
	}
	var goalOp any
	if t.GoalOperator != "" {
		goalOp = string(t.GoalOperator)
	}
	var recurType any
	if t.RecurType != "" {
		recurType = t.RecurType
	}
	var goalMetric any
	if t.GoalMetricType != "" {
		goalMetric = t.GoalMetricType
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (profile_id, title, icon, kind, is_required, is_active, sort_order,
			recur_type, recur_interval, recur_day_of_week, recur_day_of_month,
			last_occurrence_date, next_occurrence_date, due_date,
			goal_metric_type, goal_value, goal_operator, goal_auto_check)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProfileID, t.Title, t.Icon, t.Kind, t.IsRequired, t.IsActive, t.SortOrder,
		recurType, t.RecurInterval, intArg(t.RecurDayOfWeek), intArg(t.RecurDayOfMonth),
		dateArg(t.LastOccurrenceDate), dateArg(t.NextOccurrenceDate), dateArg(t.DueDate),
		goalMetric, goalValue, goalOp, t.GoalAutoCheck,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// GetForProfile returns the task only if it belongs to the given profile.
func (s *TaskStore) GetForProfile(id, profileID int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ? AND profile_id = ?`, id, profileID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List(profileID int64) ([]model.Task, error) {
	tasks, err := s.queryTasks(
		`SELECT `+taskCols+` FROM tasks WHERE profile_id = ? ORDER BY sort_order ASC, id ASC`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) ListActive(profileID int64) ([]model.Task, error) {
	tasks, err := s.queryTasks(
		`SELECT `+taskCols+` FROM tasks WHERE profile_id = ? AND is_active = 1 ORDER BY sort_order ASC, id ASC`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}
	return tasks, nil
}

// ListDueScheduled returns the profile's active scheduled tasks whose next
// occurrence lands exactly on the given date.
func (s *TaskStore) ListDueScheduled(profileID int64, date time.Time) ([]model.Task, error) {
	tasks, err := s.queryTasks(
		`SELECT `+taskCols+` FROM tasks
		 WHERE profile_id = ? AND is_active = 1 AND kind = 'scheduled' AND next_occurrence_date = ?
		 ORDER BY sort_order ASC, id ASC`,
		profileID, dates.Format(date),
	)
	if err != nil {
		return nil, fmt.Errorf("list due scheduled tasks: %w", err)
	}
	return tasks, nil
}

// ListUpcomingScheduled returns the profile's active scheduled tasks due
// within [today, today+daysAhead].
func (s *TaskStore) ListUpcomingScheduled(profileID int64, today time.Time, daysAhead int) ([]model.Task, error) {
	end := dates.AddDays(today, daysAhead)
	tasks, err := s.queryTasks(
		`SELECT `+taskCols+` FROM tasks
		 WHERE profile_id = ? AND is_active = 1 AND kind = 'scheduled'
		   AND next_occurrence_date IS NOT NULL AND next_occurrence_date >= ? AND next_occurrence_date <= ?
		 ORDER BY next_occurrence_date ASC, sort_order ASC`,
		profileID, dates.Format(today), dates.Format(end),
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming scheduled tasks: %w", err)
	}
	return tasks, nil
}

// ListActiveScheduledAll returns every profile's active scheduled tasks,
// for the maintenance sweep.
func (s *TaskStore) ListActiveScheduledAll() ([]model.Task, error) {
	tasks, err := s.queryTasks(
		`SELECT ` + taskCols + ` FROM tasks WHERE is_active = 1 AND kind = 'scheduled' ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list scheduled tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) ListPunchList(profileID int64, includeArchived bool) ([]model.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks
		 WHERE profile_id = ? AND is_active = 1 AND kind = 'punch_list'`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY due_date IS NULL, due_date ASC, created_at ASC`

	tasks, err := s.queryTasks(query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list punch list tasks: %w", err)
	}
	return tasks, nil
}

// ListArchivable returns punch list tasks completed before the cutoff and
// not yet archived, across all profiles.
func (s *TaskStore) ListArchivable(cutoff time.Time) ([]model.Task, error) {
	tasks, err := s.queryTasks(
		`SELECT `+taskCols+` FROM tasks
		 WHERE kind = 'punch_list' AND completed_at IS NOT NULL AND archived_at IS NULL AND completed_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list archivable tasks: %w", err)
	}
	return tasks, nil
}

// ListGoalTasks returns the profile's active tasks with metric auto-check
// enabled.
func (s *TaskStore) ListGoalTasks(profileID int64) ([]model.Task, error) {
	tasks, err := s.queryTasks(
		`SELECT `+taskCols+` FROM tasks
		 WHERE profile_id = ? AND is_active = 1 AND goal_auto_check = 1 AND goal_metric_type IS NOT NULL`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goal tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) Update(t model.Task) (*model.Task, error) {
	var goalValue any
	if t.GoalValue != nil {
		goalValue = *t.GoalValue
	}
	var goalOp any
	if t.GoalOperator != "" {
		goalOp = string(t.GoalOperator)
	}
	var recurType any
	if t.RecurType != "" {
		recurType = t.RecurType
	}
	var goalMetric any
	if t.GoalMetricType != "" {
		goalMetric = t.GoalMetricType
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, icon = ?, kind = ?, is_required = ?, is_active = ?, sort_order = ?,
			recur_type = ?, recur_interval = ?, recur_day_of_week = ?, recur_day_of_month = ?,
			due_date = ?, goal_metric_type = ?, goal_value = ?, goal_operator = ?, goal_auto_check = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND profile_id = ?`,
		t.Title, t.Icon, t.Kind, t.IsRequired, t.IsActive, t.SortOrder,
		recurType, t.RecurInterval, intArg(t.RecurDayOfWeek), intArg(t.RecurDayOfMonth),
		dateArg(t.DueDate), goalMetric, goalValue, goalOp, t.GoalAutoCheck,
		t.ID, t.ProfileID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(t.ID)
}

// UpdateOccurrence rewrites a scheduled task's recurrence pointers.
func (s *TaskStore) UpdateOccurrence(id int64, last, next *time.Time) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET last_occurrence_date = ?, next_occurrence_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		dateArg(last), dateArg(next), id,
	)
	if err != nil {
		return fmt.Errorf("update occurrence: %w", err)
	}
	return nil
}

func (s *TaskStore) SetCompleted(id int64, completedAt *time.Time) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		timeArg(completedAt), id,
	)
	if err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	return nil
}

func (s *TaskStore) SetArchived(id int64, archivedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET archived_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		archivedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set archived: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(id, profileID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
