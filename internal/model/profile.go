package model

import "time"

// Profile is an owner account on the shared device. Personal tasks, checks,
// and daily statuses belong to exactly one profile; household tasks are
// shared and only use profiles for completion attribution.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	HasPIN    bool      `json:"has_pin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
