package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/model"
)

type CheckStore struct {
	db *sql.DB
}

func NewCheckStore(db *sql.DB) *CheckStore {
	return &CheckStore{db: db}
}

const checkCols = `date, task_id, profile_id, checked, checked_at`

func scanCheck(scanner interface{ Scan(...any) error }) (*model.TaskCheck, error) {
	var c model.TaskCheck
	var dateStr string
	var checkedAt sql.NullTime

	if err := scanner.Scan(&dateStr, &c.TaskID, &c.ProfileID, &c.Checked, &checkedAt); err != nil {
		return nil, err
	}

	d, err := dates.Parse(dateStr)
	if err != nil {
		return nil, err
	}
	c.Date = d
	c.CheckedAt = scanTime(checkedAt)
	return &c, nil
}

func (s *CheckStore) Get(date time.Time, taskID int64) (*model.TaskCheck, error) {
	row := s.db.QueryRow(
		`SELECT `+checkCols+` FROM task_checks WHERE date = ? AND task_id = ?`,
		dates.Format(date), taskID,
	)
	c, err := scanCheck(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get check: %w", err)
	}
	return c, nil
}

func (s *CheckStore) ListForDate(date time.Time, profileID int64) ([]model.TaskCheck, error) {
	rows, err := s.db.Query(
		`SELECT `+checkCols+` FROM task_checks WHERE date = ? AND profile_id = ?`,
		dates.Format(date), profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var checks []model.TaskCheck
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		checks = append(checks, *c)
	}
	return checks, rows.Err()
}

// CreateIfMissing inserts an unchecked row for (date, task) unless one
// already exists. Existing rows are never touched.
func (s *CheckStore) CreateIfMissing(date time.Time, taskID, profileID int64) error {
	_, err := s.db.Exec(
		`INSERT INTO task_checks (date, task_id, profile_id, checked) VALUES (?, ?, ?, 0)
		 ON CONFLICT (date, task_id) DO NOTHING`,
		dates.Format(date), taskID, profileID,
	)
	if err != nil {
		return fmt.Errorf("create check: %w", err)
	}
	return nil
}

// Upsert creates or rewrites the check for (date, task).
func (s *CheckStore) Upsert(date time.Time, taskID, profileID int64, checked bool, checkedAt *time.Time) (*model.TaskCheck, error) {
	_, err := s.db.Exec(
		`INSERT INTO task_checks (date, task_id, profile_id, checked, checked_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (date, task_id) DO UPDATE SET checked = excluded.checked, checked_at = excluded.checked_at`,
		dates.Format(date), taskID, profileID, checked, timeArg(checkedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert check: %w", err)
	}
	return s.Get(date, taskID)
}

// ListCheckedDates returns the dates a task was checked, newest first.
func (s *CheckStore) ListCheckedDates(taskID int64) ([]time.Time, error) {
	rows, err := s.db.Query(
		`SELECT date FROM task_checks WHERE task_id = ? AND checked = 1 ORDER BY date DESC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checked dates: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		d, err := dates.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// --- DailyStatus ---

func (s *CheckStore) GetDailyStatus(date time.Time, profileID int64) (*model.DailyStatus, error) {
	row := s.db.QueryRow(
		`SELECT date, profile_id, completed_at FROM daily_status WHERE date = ? AND profile_id = ?`,
		dates.Format(date), profileID,
	)

	var ds model.DailyStatus
	var dateStr string
	var completedAt sql.NullTime
	err := row.Scan(&dateStr, &ds.ProfileID, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily status: %w", err)
	}

	d, err := dates.Parse(dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	ds.Date = d
	ds.CompletedAt = scanTime(completedAt)
	return &ds, nil
}

// SetDailyStatus creates or rewrites the aggregate row for (date, profile).
func (s *CheckStore) SetDailyStatus(date time.Time, profileID int64, completedAt *time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO daily_status (date, profile_id, completed_at) VALUES (?, ?, ?)
		 ON CONFLICT (date, profile_id) DO UPDATE SET completed_at = excluded.completed_at`,
		dates.Format(date), profileID, timeArg(completedAt),
	)
	if err != nil {
		return fmt.Errorf("set daily status: %w", err)
	}
	return nil
}

// ListCompletedDates returns the profile's completed dates, newest first.
func (s *CheckStore) ListCompletedDates(profileID int64) ([]time.Time, error) {
	rows, err := s.db.Query(
		`SELECT date FROM daily_status WHERE profile_id = ? AND completed_at IS NOT NULL ORDER BY date DESC`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed dates: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		d, err := dates.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// ListStatusesInRange returns daily statuses for [start, end] inclusive.
func (s *CheckStore) ListStatusesInRange(profileID int64, start, end time.Time) ([]model.DailyStatus, error) {
	rows, err := s.db.Query(
		`SELECT date, profile_id, completed_at FROM daily_status
		 WHERE profile_id = ? AND date >= ? AND date <= ? ORDER BY date ASC`,
		profileID, dates.Format(start), dates.Format(end),
	)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	var result []model.DailyStatus
	for rows.Next() {
		var ds model.DailyStatus
		var dateStr string
		var completedAt sql.NullTime
		if err := rows.Scan(&dateStr, &ds.ProfileID, &completedAt); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		d, err := dates.Parse(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}
		ds.Date = d
		ds.CompletedAt = scanTime(completedAt)
		result = append(result, ds)
	}
	return result, rows.Err()
}
