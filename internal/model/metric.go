package model

import "time"

// MetricSample is one numeric reading for a profile on a date, supplied by
// an external metric source. The ledger compares samples against task goal
// configuration to auto-toggle checks.
type MetricSample struct {
	ProfileID  int64     `json:"profile_id"`
	Date       time.Time `json:"date"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
}
