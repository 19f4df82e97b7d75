package sweep

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/database"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/store"
)

func setupSweepTest(t *testing.T, now time.Time) (*Sweeper, *store.TaskStore, *store.HouseholdStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	profiles := store.NewProfileStore(db)
	p, err := profiles.Create("Test", "#f97316")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	tasks := store.NewTaskStore(db)
	hh := store.NewHouseholdStore(db)
	s := New(tasks, hh, clock.Fixed{Instant: now}, slog.Default())
	return s, tasks, hh, p.ID
}

func intPtr(i int) *int { return &i }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRefreshAdvancesPastScheduled(t *testing.T) {
	now := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	s, tasks, _, profileID := setupSweepTest(t, now)

	stale, err := tasks.Create(model.Task{
		ProfileID: profileID, Title: "Water plants", Kind: model.KindScheduled,
		IsActive: true, RecurType: "days", RecurInterval: 3,
		NextOccurrenceDate: datePtr(2026, 2, 1),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	fresh, err := tasks.Create(model.Task{
		ProfileID: profileID, Title: "Change filter", Kind: model.KindScheduled,
		IsActive: true, RecurType: "days", RecurInterval: 30,
		NextOccurrenceDate: datePtr(2026, 2, 20),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	updated, err := s.RefreshStaleRecurrences(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	got, _ := tasks.GetByID(stale.ID)
	want := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC) // today + 3
	if got.NextOccurrenceDate == nil || !got.NextOccurrenceDate.Equal(want) {
		t.Errorf("next occurrence = %v, want %v", got.NextOccurrenceDate, want)
	}

	got, _ = tasks.GetByID(fresh.ID)
	if got.NextOccurrenceDate == nil || !got.NextOccurrenceDate.Equal(*fresh.NextOccurrenceDate) {
		t.Errorf("fresh pointer moved to %v", got.NextOccurrenceDate)
	}

	// Second pass is a no-op.
	updated, err = s.RefreshStaleRecurrences(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if updated != 0 {
		t.Errorf("second pass updated = %d, want 0", updated)
	}
}

func TestRefreshSeedsHouseholdPointer(t *testing.T) {
	now := time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC) // Thursday
	s, _, hh, _ := setupSweepTest(t, now)

	task, err := hh.Create(model.HouseholdTask{
		Title: "Trash out", Frequency: model.FreqWeekly,
		ScheduleMode: model.ModeCalendar, DayOfWeek: intPtr(0), IsActive: true,
	})
	if err != nil {
		t.Fatalf("create household task: %v", err)
	}

	if _, err := s.RefreshStaleRecurrences(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got, _ := hh.GetByID(task.ID)
	want := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC) // next Monday
	if got.NextDueDate == nil || !got.NextDueDate.Equal(want) {
		t.Errorf("next due = %v, want %v", got.NextDueDate, want)
	}
}

func TestRefreshRepairsUndoneCompletion(t *testing.T) {
	now := time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)
	s, _, hh, profileID := setupSweepTest(t, now)

	// Pointer reflects a completion that was later undone; only an older
	// completion remains in the log.
	task, err := hh.Create(model.HouseholdTask{
		Title: "Mop floors", Frequency: model.FreqMonthly,
		ScheduleMode: model.ModeCalendar, DayOfMonth: intPtr(1),
		NextDueDate: datePtr(2026, 3, 1), IsActive: true,
	})
	if err != nil {
		t.Fatalf("create household task: %v", err)
	}
	remaining := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	if _, err := hh.CreateCompletion(task.ID, profileID, remaining, ""); err != nil {
		t.Fatalf("create completion: %v", err)
	}

	updated, err := s.RefreshStaleRecurrences(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	got, _ := hh.GetByID(task.ID)
	// Re-derived from the Jan 5 completion: next monthly slot is Feb 1.
	want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if got.NextDueDate == nil || !got.NextDueDate.Equal(want) {
		t.Errorf("next due = %v, want %v", got.NextDueDate, want)
	}

	updated, err = s.RefreshStaleRecurrences(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if updated != 0 {
		t.Errorf("second pass updated = %d, want 0", updated)
	}
}

func TestRefreshSkipsTodo(t *testing.T) {
	now := time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)
	s, _, hh, _ := setupSweepTest(t, now)

	task, err := hh.Create(model.HouseholdTask{
		Title: "Fix fence", Frequency: model.FreqTodo, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create household task: %v", err)
	}

	if _, err := s.RefreshStaleRecurrences(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got, _ := hh.GetByID(task.ID)
	if got.NextDueDate != nil {
		t.Errorf("todo next due = %v, want nil", got.NextDueDate)
	}
}

func TestArchiveOldCompleted(t *testing.T) {
	now := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	s, tasks, _, profileID := setupSweepTest(t, now)

	old, err := tasks.Create(model.Task{
		ProfileID: profileID, Title: "Hang shelf", Kind: model.KindPunchList, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	recent, err := tasks.Create(model.Task{
		ProfileID: profileID, Title: "Oil hinges", Kind: model.KindPunchList, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	tenDaysAgo := now.AddDate(0, 0, -10)
	yesterday := now.AddDate(0, 0, -1)
	if err := tasks.SetCompleted(old.ID, &tenDaysAgo); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if err := tasks.SetCompleted(recent.ID, &yesterday); err != nil {
		t.Fatalf("set completed: %v", err)
	}

	archived, err := s.ArchiveOldCompleted(context.Background(), DefaultArchiveAfterDays)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived != 1 {
		t.Errorf("archived = %d, want 1", archived)
	}

	got, _ := tasks.GetByID(old.ID)
	if got.ArchivedAt == nil {
		t.Error("old completed item should be archived")
	}
	got, _ = tasks.GetByID(recent.ID)
	if got.ArchivedAt != nil {
		t.Error("recently completed item should not be archived")
	}

	// Second pass finds nothing left to archive.
	archived, err = s.ArchiveOldCompleted(context.Background(), DefaultArchiveAfterDays)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived != 0 {
		t.Errorf("second pass archived = %d, want 0", archived)
	}
}
