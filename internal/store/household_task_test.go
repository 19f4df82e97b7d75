package store

import (
	"testing"
	"time"

	"github.com/moresby/homestead/internal/model"
)

func TestHouseholdTaskCRUD(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)

	created, err := hs.Create(model.HouseholdTask{
		Title: "Clean gutters", Description: "Front and back", Icon: "home-roof",
		Frequency: model.FreqAnnual, ScheduleMode: model.ModeCalendar,
		Month: intPtr(10), Day: intPtr(15), IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Frequency != model.FreqAnnual {
		t.Errorf("frequency = %q, want annual", created.Frequency)
	}
	if created.Month == nil || *created.Month != 10 {
		t.Errorf("month = %v, want 10", created.Month)
	}

	created.Title = "Clean gutters and downspouts"
	created.ScheduleMode = model.ModeRolling
	updated, err := hs.Update(*created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Clean gutters and downspouts" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.ScheduleMode != model.ModeRolling {
		t.Errorf("schedule mode = %q, want rolling", updated.ScheduleMode)
	}

	deleted, err := hs.Delete(created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report a removed row")
	}
	if got, _ := hs.GetByID(created.ID); got != nil {
		t.Error("expected nil for deleted task")
	}
}

func TestHouseholdCreateDefaultsCalendarMode(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)

	created, err := hs.Create(model.HouseholdTask{
		Title: "Trash out", Frequency: model.FreqWeekly, DayOfWeek: intPtr(0), IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ScheduleMode != model.ModeCalendar {
		t.Errorf("schedule mode = %q, want calendar default", created.ScheduleMode)
	}
}

func TestHouseholdListFiltersInactive(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)

	if _, err := hs.Create(model.HouseholdTask{Title: "Active", Frequency: model.FreqWeekly, IsActive: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := hs.Create(model.HouseholdTask{Title: "Retired", Frequency: model.FreqWeekly, IsActive: false}); err != nil {
		t.Fatalf("create: %v", err)
	}

	active, err := hs.List(false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].Title != "Active" {
		t.Errorf("active = %+v, want only the active task", active)
	}

	all, err := hs.List(true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d tasks, want 2", len(all))
	}
}

func TestHouseholdCompletionLog(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	profileID := testProfile(t, db)

	task, err := hs.Create(model.HouseholdTask{
		Title: "Mow lawn", Frequency: model.FreqWeekly, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if last, _ := hs.LastCompletion(task.ID); last != nil {
		t.Fatal("expected no completions yet")
	}

	older := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 1, 27, 10, 0, 0, 0, time.UTC)
	if _, err := hs.CreateCompletion(task.ID, profileID, older, "first pass"); err != nil {
		t.Fatalf("create completion: %v", err)
	}
	c2, err := hs.CreateCompletion(task.ID, profileID, newer, "")
	if err != nil {
		t.Fatalf("create completion: %v", err)
	}

	last, err := hs.LastCompletion(task.ID)
	if err != nil {
		t.Fatalf("last completion: %v", err)
	}
	if last == nil || last.ID != c2.ID {
		t.Errorf("last = %+v, want the newer completion", last)
	}

	list, err := hs.ListCompletions(task.ID, 10)
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(list))
	}
	if !list[0].CompletedAt.After(list[1].CompletedAt) {
		t.Error("completions should be newest first")
	}
	if list[1].Notes != "first pass" {
		t.Errorf("notes = %q, want %q", list[1].Notes, "first pass")
	}

	if err := hs.DeleteCompletion(c2.ID); err != nil {
		t.Fatalf("delete completion: %v", err)
	}
	last, _ = hs.LastCompletion(task.ID)
	if last == nil || !last.CompletedAt.Equal(older) {
		t.Errorf("last after delete = %+v, want the older completion", last)
	}
}

func TestHouseholdUpdateNextDue(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)

	task, err := hs.Create(model.HouseholdTask{
		Title: "Mop floors", Frequency: model.FreqMonthly, DayOfMonth: intPtr(1), IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	next := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := hs.UpdateNextDue(task.ID, &next); err != nil {
		t.Fatalf("update next due: %v", err)
	}
	got, _ := hs.GetByID(task.ID)
	if got.NextDueDate == nil || !got.NextDueDate.Equal(next) {
		t.Errorf("next due = %v, want %v", got.NextDueDate, next)
	}

	if err := hs.UpdateNextDue(task.ID, nil); err != nil {
		t.Fatalf("clear next due: %v", err)
	}
	got, _ = hs.GetByID(task.ID)
	if got.NextDueDate != nil {
		t.Errorf("next due = %v, want nil", got.NextDueDate)
	}
}
