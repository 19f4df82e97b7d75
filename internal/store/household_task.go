package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/moresby/homestead/internal/model"
)

// HouseholdStore persists shared chores and their completion log. There is
// no profile filter on the task side: every profile sees the same list.
type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

const householdCols = `id, title, description, icon, frequency, schedule_mode,
	day_of_week, day_of_month, month, day, due_date, next_due_date,
	sort_order, is_active, created_at, updated_at`

func scanHouseholdTask(scanner interface{ Scan(...any) error }) (*model.HouseholdTask, error) {
	var t model.HouseholdTask
	var dow, dom, month, day sql.NullInt64
	var dueDate, nextDue sql.NullString

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Description, &t.Icon, &t.Frequency, &t.ScheduleMode,
		&dow, &dom, &month, &day, &dueDate, &nextDue,
		&t.SortOrder, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.DayOfWeek = scanInt(dow)
	t.DayOfMonth = scanInt(dom)
	t.Month = scanInt(month)
	t.Day = scanInt(day)
	if t.DueDate, err = scanDate(dueDate); err != nil {
		return nil, err
	}
	if t.NextDueDate, err = scanDate(nextDue); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *HouseholdStore) queryTasks(query string, args ...any) ([]model.HouseholdTask, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.HouseholdTask
	for rows.Next() {
		t, err := scanHouseholdTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan household task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *HouseholdStore) Create(t model.HouseholdTask) (*model.HouseholdTask, error) {
	mode := t.ScheduleMode
	if mode == "" {
		mode = model.ModeCalendar
	}

	result, err := s.db.Exec(
		`INSERT INTO household_tasks (title, description, icon, frequency, schedule_mode,
			day_of_week, day_of_month, month, day, due_date, next_due_date, sort_order, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Icon, t.Frequency, mode,
		intArg(t.DayOfWeek), intArg(t.DayOfMonth), intArg(t.Month), intArg(t.Day),
		dateArg(t.DueDate), dateArg(t.NextDueDate), t.SortOrder, t.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) GetByID(id int64) (*model.HouseholdTask, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM household_tasks WHERE id = ?`, id)
	t, err := scanHouseholdTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household task: %w", err)
	}
	return t, nil
}

func (s *HouseholdStore) List(includeInactive bool) ([]model.HouseholdTask, error) {
	query := `SELECT ` + householdCols + ` FROM household_tasks`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order ASC, id ASC`

	tasks, err := s.queryTasks(query)
	if err != nil {
		return nil, fmt.Errorf("list household tasks: %w", err)
	}
	return tasks, nil
}

func (s *HouseholdStore) ListByFrequency(freq model.Frequency, includeInactive bool) ([]model.HouseholdTask, error) {
	query := `SELECT ` + householdCols + ` FROM household_tasks WHERE frequency = ?`
	if !includeInactive {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY sort_order ASC, id ASC`

	tasks, err := s.queryTasks(query, freq)
	if err != nil {
		return nil, fmt.Errorf("list household tasks by frequency: %w", err)
	}
	return tasks, nil
}

func (s *HouseholdStore) Update(t model.HouseholdTask) (*model.HouseholdTask, error) {
	_, err := s.db.Exec(
		`UPDATE household_tasks SET title = ?, description = ?, icon = ?, frequency = ?, schedule_mode = ?,
			day_of_week = ?, day_of_month = ?, month = ?, day = ?, due_date = ?,
			sort_order = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		t.Title, t.Description, t.Icon, t.Frequency, t.ScheduleMode,
		intArg(t.DayOfWeek), intArg(t.DayOfMonth), intArg(t.Month), intArg(t.Day), dateArg(t.DueDate),
		t.SortOrder, t.IsActive, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update household task: %w", err)
	}
	return s.GetByID(t.ID)
}

// UpdateNextDue rewrites only the cached next-due pointer.
func (s *HouseholdStore) UpdateNextDue(id int64, next *time.Time) error {
	_, err := s.db.Exec(
		`UPDATE household_tasks SET next_due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		dateArg(next), id,
	)
	if err != nil {
		return fmt.Errorf("update next due: %w", err)
	}
	return nil
}

func (s *HouseholdStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM household_tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete household task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// --- Completions ---

const completionCols = `id, household_task_id, completed_at, completed_by, notes`

func scanHouseholdCompletion(scanner interface{ Scan(...any) error }) (*model.HouseholdCompletion, error) {
	var c model.HouseholdCompletion
	var notes sql.NullString

	if err := scanner.Scan(&c.ID, &c.HouseholdTaskID, &c.CompletedAt, &c.CompletedBy, &notes); err != nil {
		return nil, err
	}
	c.Notes = notes.String
	return &c, nil
}

func (s *HouseholdStore) CreateCompletion(taskID, completedBy int64, completedAt time.Time, notes string) (*model.HouseholdCompletion, error) {
	var n any
	if notes != "" {
		n = notes
	}

	result, err := s.db.Exec(
		`INSERT INTO household_completions (household_task_id, completed_at, completed_by, notes) VALUES (?, ?, ?, ?)`,
		taskID, completedAt.UTC(), completedBy, n,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+completionCols+` FROM household_completions WHERE id = ?`, id)
	return scanHouseholdCompletion(row)
}

func (s *HouseholdStore) LastCompletion(taskID int64) (*model.HouseholdCompletion, error) {
	row := s.db.QueryRow(
		`SELECT `+completionCols+` FROM household_completions
		 WHERE household_task_id = ? ORDER BY completed_at DESC, id DESC LIMIT 1`,
		taskID,
	)
	c, err := scanHouseholdCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last completion: %w", err)
	}
	return c, nil
}

func (s *HouseholdStore) ListCompletions(taskID int64, limit int) ([]model.HouseholdCompletion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM household_completions
		 WHERE household_task_id = ? ORDER BY completed_at DESC, id DESC LIMIT ?`,
		taskID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.HouseholdCompletion
	for rows.Next() {
		c, err := scanHouseholdCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

func (s *HouseholdStore) DeleteCompletion(id int64) error {
	_, err := s.db.Exec(`DELETE FROM household_completions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	return nil
}
