// Package store provides SQLite persistence for the tracker's records.
// One store type per entity family, all sharing a *sql.DB.
package store

import (
	"database/sql"
	"time"

	"github.com/moresby/homestead/internal/dates"
)

// Calendar dates are stored as TEXT in YYYY-MM-DD form so that range
// filters compare lexicographically.

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dates.Format(*t)
}

func scanDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := dates.Parse(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func scanTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func intArg(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func scanInt(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int64)
	return &v
}
