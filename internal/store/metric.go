package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/model"
)

// MetricStore holds the numeric samples an external metric source pushes
// in. The ledger reads them back when evaluating task goals.
type MetricStore struct {
	db *sql.DB
}

func NewMetricStore(db *sql.DB) *MetricStore {
	return &MetricStore{db: db}
}

// Upsert records a sample, replacing any prior value for the same
// (profile, date, type) key. Later syncs overwrite earlier ones.
func (s *MetricStore) Upsert(m model.MetricSample) error {
	_, err := s.db.Exec(
		`INSERT INTO metric_samples (profile_id, date, metric_type, value, unit) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (profile_id, date, metric_type) DO UPDATE SET value = excluded.value, unit = excluded.unit`,
		m.ProfileID, dates.Format(m.Date), m.MetricType, m.Value, m.Unit,
	)
	if err != nil {
		return fmt.Errorf("upsert metric: %w", err)
	}
	return nil
}

func (s *MetricStore) Get(profileID int64, date time.Time, metricType string) (*model.MetricSample, error) {
	row := s.db.QueryRow(
		`SELECT profile_id, date, metric_type, value, unit FROM metric_samples
		 WHERE profile_id = ? AND date = ? AND metric_type = ?`,
		profileID, dates.Format(date), metricType,
	)

	var m model.MetricSample
	var dateStr string
	err := row.Scan(&m.ProfileID, &dateStr, &m.MetricType, &m.Value, &m.Unit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get metric: %w", err)
	}

	d, err := dates.Parse(dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	m.Date = d
	return &m, nil
}

func (s *MetricStore) ListForDate(profileID int64, date time.Time) ([]model.MetricSample, error) {
	rows, err := s.db.Query(
		`SELECT profile_id, date, metric_type, value, unit FROM metric_samples
		 WHERE profile_id = ? AND date = ? ORDER BY metric_type ASC`,
		profileID, dates.Format(date),
	)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	var samples []model.MetricSample
	for rows.Next() {
		var m model.MetricSample
		var dateStr string
		if err := rows.Scan(&m.ProfileID, &dateStr, &m.MetricType, &m.Value, &m.Unit); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		d, err := dates.Parse(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}
		m.Date = d
		samples = append(samples, m)
	}
	return samples, rows.Err()
}
