package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/moresby/homestead/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testProfile creates a profile separate from the seeded default.
func testProfile(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	p, err := NewProfileStore(db).Create("Test", "#a855f7")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p.ID
}

func intPtr(i int) *int { return &i }

func datePtr(y int, m time.Month, d int) *time.Time {
	d2 := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &d2
}
