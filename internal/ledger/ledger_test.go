package ledger

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/database"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/store"
)

type fixture struct {
	ledger    *Ledger
	tasks     *store.TaskStore
	checks    *store.CheckStore
	household *store.HouseholdStore
	metrics   *store.MetricStore
	profileID int64
}

// setupLedgerTest opens an in-memory database and creates a fresh profile
// so the seeded defaults don't leak into assertions.
func setupLedgerTest(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	profiles := store.NewProfileStore(db)
	p, err := profiles.Create("Test", "#22c55e")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	f := &fixture{
		tasks:     store.NewTaskStore(db),
		checks:    store.NewCheckStore(db),
		household: store.NewHouseholdStore(db),
		metrics:   store.NewMetricStore(db),
		profileID: p.ID,
	}
	f.ledger = New(f.tasks, f.checks, f.household, f.metrics, clock.Fixed{Instant: now}, slog.Default())
	return f
}

func intPtr(i int) *int { return &i }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func (f *fixture) createDaily(t *testing.T, title string, required bool) *model.Task {
	t.Helper()
	task, err := f.tasks.Create(model.Task{
		ProfileID: f.profileID, Title: title, Kind: model.KindDaily,
		IsRequired: required, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create daily task: %v", err)
	}
	return task
}

func TestEnsureChecksIdempotent(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	f.createDaily(t, "Workout", true)
	f.createDaily(t, "Read", true)

	for i := 0; i < 3; i++ {
		if err := f.ledger.EnsureChecks(date, f.profileID); err != nil {
			t.Fatalf("ensure checks (pass %d): %v", i, err)
		}
	}

	checks, err := f.checks.ListForDate(date, f.profileID)
	if err != nil {
		t.Fatalf("list checks: %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}
	for _, c := range checks {
		if c.Checked {
			t.Errorf("task %d: materialized check should start unchecked", c.TaskID)
		}
	}
}

func TestEnsureChecksPreservesExisting(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	task := f.createDaily(t, "Workout", true)
	if err := f.ledger.EnsureChecks(date, f.profileID); err != nil {
		t.Fatalf("ensure checks: %v", err)
	}
	if _, err := f.ledger.SetCheck(date, task.ID, true, f.profileID); err != nil {
		t.Fatalf("set check: %v", err)
	}

	// A later materialization pass must not reset the checked row.
	if err := f.ledger.EnsureChecks(date, f.profileID); err != nil {
		t.Fatalf("ensure checks: %v", err)
	}
	c, err := f.checks.Get(date, task.ID)
	if err != nil {
		t.Fatalf("get check: %v", err)
	}
	if c == nil || !c.Checked {
		t.Error("existing checked row was reset")
	}
}

func TestEnsureChecksScheduledOnlyWhenDue(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	due, err := f.tasks.Create(model.Task{
		ProfileID: f.profileID, Title: "Water plants", Kind: model.KindScheduled,
		IsActive: true, RecurType: "days", RecurInterval: 3,
		NextOccurrenceDate: datePtr(2026, 2, 1),
	})
	if err != nil {
		t.Fatalf("create scheduled task: %v", err)
	}
	notDue, err := f.tasks.Create(model.Task{
		ProfileID: f.profileID, Title: "Change filter", Kind: model.KindScheduled,
		IsActive: true, RecurType: "days", RecurInterval: 30,
		NextOccurrenceDate: datePtr(2026, 2, 15),
	})
	if err != nil {
		t.Fatalf("create scheduled task: %v", err)
	}

	if err := f.ledger.EnsureChecks(date, f.profileID); err != nil {
		t.Fatalf("ensure checks: %v", err)
	}

	if c, _ := f.checks.Get(date, due.ID); c == nil {
		t.Error("due scheduled task should be materialized")
	}
	if c, _ := f.checks.Get(date, notDue.ID); c != nil {
		t.Error("scheduled task due later should not be materialized")
	}
}

func TestSetCheckNotFound(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	if _, err := f.ledger.SetCheck(date, 9999, true, f.profileID); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown task: err = %v, want ErrNotFound", err)
	}

	// A task owned by another profile is invisible to this one.
	task := f.createDaily(t, "Workout", true)
	if _, err := f.ledger.SetCheck(date, task.ID, true, f.profileID+1); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign task: err = %v, want ErrNotFound", err)
	}
}

func TestSetCheckDailyStatus(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t1 := f.createDaily(t, "Workout", true)
	t2 := f.createDaily(t, "Read", true)
	opt := f.createDaily(t, "Stretch", false)

	// One of two required done: day incomplete.
	if _, err := f.ledger.SetCheck(date, t1.ID, true, f.profileID); err != nil {
		t.Fatalf("set check: %v", err)
	}
	ds, err := f.checks.GetDailyStatus(date, f.profileID)
	if err != nil {
		t.Fatalf("get daily status: %v", err)
	}
	if ds != nil && ds.CompletedAt != nil {
		t.Error("day should not be complete with a required task unchecked")
	}

	// Both required done: complete, optional irrelevant.
	if _, err := f.ledger.SetCheck(date, t2.ID, true, f.profileID); err != nil {
		t.Fatalf("set check: %v", err)
	}
	ds, err = f.checks.GetDailyStatus(date, f.profileID)
	if err != nil {
		t.Fatalf("get daily status: %v", err)
	}
	if ds == nil || ds.CompletedAt == nil {
		t.Fatal("day should be complete with all required tasks checked")
	}
	firstCompleted := *ds.CompletedAt

	// Toggling the optional task preserves the completion timestamp.
	if _, err := f.ledger.SetCheck(date, opt.ID, true, f.profileID); err != nil {
		t.Fatalf("set check: %v", err)
	}
	ds, _ = f.checks.GetDailyStatus(date, f.profileID)
	if ds == nil || ds.CompletedAt == nil || !ds.CompletedAt.Equal(firstCompleted) {
		t.Error("completion timestamp should be preserved while the day stays complete")
	}

	// Unchecking a required task clears the completion.
	if _, err := f.ledger.SetCheck(date, t1.ID, false, f.profileID); err != nil {
		t.Fatalf("set check: %v", err)
	}
	ds, _ = f.checks.GetDailyStatus(date, f.profileID)
	if ds == nil || ds.CompletedAt != nil {
		t.Error("unchecking a required task should clear the day's completion")
	}
}

func TestSetCheckAdvancesScheduled(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)
	date := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC) // Monday

	task, err := f.tasks.Create(model.Task{
		ProfileID: f.profileID, Title: "Laundry", Kind: model.KindScheduled,
		IsActive: true, RecurType: "weekly", RecurInterval: 1,
		RecurDayOfWeek:     intPtr(0), // Monday
		NextOccurrenceDate: datePtr(2026, 2, 2),
	})
	if err != nil {
		t.Fatalf("create scheduled task: %v", err)
	}

	if _, err := f.ledger.SetCheck(date, task.ID, true, f.profileID); err != nil {
		t.Fatalf("set check: %v", err)
	}

	got, err := f.tasks.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.LastOccurrenceDate == nil || !got.LastOccurrenceDate.Equal(date) {
		t.Errorf("last occurrence = %v, want %v", got.LastOccurrenceDate, date)
	}
	wantNext := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	if got.NextOccurrenceDate == nil || !got.NextOccurrenceDate.Equal(wantNext) {
		t.Errorf("next occurrence = %v, want %v", got.NextOccurrenceDate, wantNext)
	}
}

func TestSetCheckEarlyDoesNotReshapeSchedule(t *testing.T) {
	now := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)
	// Checked on Thursday while the pointer says next Monday.
	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	task, err := f.tasks.Create(model.Task{
		ProfileID: f.profileID, Title: "Laundry", Kind: model.KindScheduled,
		IsActive: true, RecurType: "weekly", RecurInterval: 1,
		RecurDayOfWeek:     intPtr(0),
		NextOccurrenceDate: datePtr(2026, 2, 9),
	})
	if err != nil {
		t.Fatalf("create scheduled task: %v", err)
	}

	if _, err := f.ledger.SetCheck(date, task.ID, true, f.profileID); err != nil {
		t.Fatalf("set check: %v", err)
	}

	got, _ := f.tasks.GetByID(task.ID)
	// Anchored to the Feb 9 pointer, the next Monday after it is Feb 16.
	wantNext := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
	if got.NextOccurrenceDate == nil || !got.NextOccurrenceDate.Equal(wantNext) {
		t.Errorf("next occurrence = %v, want %v", got.NextOccurrenceDate, wantNext)
	}
}

func TestVacuouslyCompleteDay(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	// Only an optional task exists: the required set is empty, so any
	// recompute marks the day complete.
	opt := f.createDaily(t, "Stretch", false)
	if _, err := f.ledger.SetCheck(date, opt.ID, false, f.profileID); err != nil {
		t.Fatalf("set check: %v", err)
	}

	ds, err := f.checks.GetDailyStatus(date, f.profileID)
	if err != nil {
		t.Fatalf("get daily status: %v", err)
	}
	if ds == nil || ds.CompletedAt == nil {
		t.Error("day with no required tasks should be vacuously complete")
	}
}

func TestCompleteHouseholdAdvancesPointer(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)

	task, err := f.household.Create(model.HouseholdTask{
		Title: "Mop floors", Frequency: model.FreqMonthly,
		ScheduleMode: model.ModeCalendar, DayOfMonth: intPtr(1),
		NextDueDate: datePtr(2026, 2, 1), IsActive: true,
	})
	if err != nil {
		t.Fatalf("create household task: %v", err)
	}

	completion, err := f.ledger.CompleteHousehold(task.ID, f.profileID, "deep clean")
	if err != nil {
		t.Fatalf("complete household: %v", err)
	}
	if completion.CompletedBy != f.profileID {
		t.Errorf("completed_by = %d, want %d", completion.CompletedBy, f.profileID)
	}
	if completion.Notes != "deep clean" {
		t.Errorf("notes = %q, want %q", completion.Notes, "deep clean")
	}

	got, _ := f.household.GetByID(task.ID)
	wantNext := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if got.NextDueDate == nil || !got.NextDueDate.Equal(wantNext) {
		t.Errorf("next due = %v, want %v", got.NextDueDate, wantNext)
	}
}

func TestCompleteHouseholdTodoKeepsNoSchedule(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)

	task, err := f.household.Create(model.HouseholdTask{
		Title: "Fix fence", Frequency: model.FreqTodo, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create household task: %v", err)
	}

	if _, err := f.ledger.CompleteHousehold(task.ID, f.profileID, ""); err != nil {
		t.Fatalf("complete household: %v", err)
	}

	got, _ := f.household.GetByID(task.ID)
	if got.NextDueDate != nil {
		t.Errorf("todo next due = %v, want nil", got.NextDueDate)
	}
}

func TestUndoLastHouseholdCompletion(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)

	task, err := f.household.Create(model.HouseholdTask{
		Title: "Mow lawn", Frequency: model.FreqWeekly,
		ScheduleMode: model.ModeRolling, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create household task: %v", err)
	}

	first := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	second := time.Date(2026, 1, 27, 10, 0, 0, 0, time.UTC)
	if _, err := f.household.CreateCompletion(task.ID, f.profileID, first, ""); err != nil {
		t.Fatalf("create completion: %v", err)
	}
	if _, err := f.household.CreateCompletion(task.ID, f.profileID, second, ""); err != nil {
		t.Fatalf("create completion: %v", err)
	}

	if err := f.ledger.UndoLastHouseholdCompletion(task.ID); err != nil {
		t.Fatalf("undo: %v", err)
	}
	last, err := f.household.LastCompletion(task.ID)
	if err != nil {
		t.Fatalf("last completion: %v", err)
	}
	if last == nil || !last.CompletedAt.Equal(first) {
		t.Errorf("remaining completion = %v, want %v", last, first)
	}

	if err := f.ledger.UndoLastHouseholdCompletion(task.ID); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if err := f.ledger.UndoLastHouseholdCompletion(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("undo with empty log: err = %v, want ErrNotFound", err)
	}
}

func TestCompletePunchList(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)
	today := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	task, err := f.tasks.Create(model.Task{
		ProfileID: f.profileID, Title: "Hang shelf", Kind: model.KindPunchList,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create punch list task: %v", err)
	}

	got, err := f.ledger.CompletePunchList(task.ID, f.profileID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed_at should be set")
	}
	if c, _ := f.checks.Get(today, task.ID); c == nil || !c.Checked {
		t.Error("completion should record a checked row for today")
	}

	// Punch list items never drive the daily aggregate.
	if ds, _ := f.checks.GetDailyStatus(today, f.profileID); ds != nil {
		t.Error("punch list completion should not touch daily status")
	}

	got, err = f.ledger.UncompletePunchList(task.ID, f.profileID)
	if err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if got.CompletedAt != nil {
		t.Error("completed_at should be cleared")
	}
	if c, _ := f.checks.Get(today, task.ID); c == nil || c.Checked {
		t.Error("uncompletion should record an unchecked row")
	}
}

func TestCompletePunchListWrongKind(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	f := setupLedgerTest(t, now)

	task := f.createDaily(t, "Workout", true)
	if _, err := f.ledger.CompletePunchList(task.ID, f.profileID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
