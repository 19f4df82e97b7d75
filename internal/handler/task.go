package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/recurrence"
	"github.com/moresby/homestead/internal/store"
	"github.com/moresby/homestead/internal/websocket"
)

type TaskHandler struct {
	tasks  *store.TaskStore
	clock  clock.Clock
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, clk clock.Clock, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, clock: clk, hub: hub, logger: logger}
}

func (h *TaskHandler) broadcast(e websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(e)
	}
}

type taskRequest struct {
	Title      string `json:"title"`
	Icon       string `json:"icon"`
	Kind       string `json:"kind"`
	IsRequired bool   `json:"is_required"`
	IsActive   *bool  `json:"is_active"`
	SortOrder  int    `json:"sort_order"`

	RecurType       string `json:"recur_type"`
	RecurInterval   int    `json:"recur_interval"`
	RecurDayOfWeek  *int   `json:"recur_day_of_week"`
	RecurDayOfMonth *int   `json:"recur_day_of_month"`

	DueDate string `json:"due_date"`

	GoalMetricType string   `json:"goal_metric_type"`
	GoalValue      *float64 `json:"goal_value"`
	GoalOperator   string   `json:"goal_operator"`
	GoalAutoCheck  bool     `json:"goal_auto_check"`
}

func (r *taskRequest) toModel(profileID int64) (model.Task, string) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return model.Task{}, "title is required"
	}

	kind := model.TaskKind(r.Kind)
	if kind == "" {
		kind = model.KindDaily
	}
	switch kind {
	case model.KindDaily, model.KindScheduled, model.KindPunchList:
	default:
		return model.Task{}, "invalid kind"
	}

	t := model.Task{
		ProfileID:  profileID,
		Title:      r.Title,
		Icon:       r.Icon,
		Kind:       kind,
		IsRequired: r.IsRequired,
		IsActive:   true,
		SortOrder:  r.SortOrder,
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
	if t.Icon == "" {
		t.Icon = defaultTaskIcon(t.Title)
	}

	if kind == model.KindScheduled {
		if _, ok := recurrence.ParsePattern(r.RecurType, r.RecurInterval, 0, 0); !ok {
			return model.Task{}, "scheduled tasks need a recur_type of days, weekly, or monthly"
		}
		t.RecurType = r.RecurType
		t.RecurInterval = r.RecurInterval
		if t.RecurInterval < 1 {
			t.RecurInterval = 1
		}
		t.RecurDayOfWeek = r.RecurDayOfWeek
		t.RecurDayOfMonth = r.RecurDayOfMonth
	}

	if r.DueDate != "" {
		d, err := dates.Parse(r.DueDate)
		if err != nil {
			return model.Task{}, "due_date must be YYYY-MM-DD"
		}
		t.DueDate = &d
	}

	if r.GoalMetricType != "" {
		op := model.GoalOperator(r.GoalOperator)
		switch op {
		case model.OpGTE, model.OpLTE, model.OpEQ:
		default:
			return model.Task{}, "goal_operator must be gte, lte, or eq"
		}
		t.GoalMetricType = r.GoalMetricType
		t.GoalValue = r.GoalValue
		t.GoalOperator = op
		t.GoalAutoCheck = r.GoalAutoCheck
	}

	return t, ""
}

// firstOccurrence picks the initial due date for a scheduled task: today
// when today already matches the pattern, otherwise the nearest upcoming
// match. The seeded date anchors all later interval stepping.
func (h *TaskHandler) firstOccurrence(t model.Task) time.Time {
	today := h.clock.Today()
	p, ok := recurrence.ParsePattern(t.RecurType, t.RecurInterval, intValue(t.RecurDayOfWeek), intValue(t.RecurDayOfMonth))
	if !ok {
		return today
	}

	switch p.Kind {
	case recurrence.EveryNDays:
		return today
	case recurrence.WeeklyOn:
		if today.Weekday() == p.Weekday {
			return today
		}
	case recurrence.MonthlyOn:
		day := p.DayOfMonth
		if day < 1 {
			day = 1
		}
		if last := dates.DaysInMonth(today.Year(), today.Month()); day > last {
			day = last
		}
		if today.Day() <= day {
			return dates.New(today.Year(), today.Month(), day)
		}
	}

	// Step a single cycle ahead regardless of the interval; multi-cycle
	// spacing only applies between occurrences.
	p.Interval = 1
	next, _ := recurrence.Next(p, today)
	return next
}

func recurrenceChanged(a, b model.Task) bool {
	return a.RecurType != b.RecurType ||
		a.RecurInterval != b.RecurInterval ||
		intValue(a.RecurDayOfWeek) != intValue(b.RecurDayOfWeek) ||
		intValue(a.RecurDayOfMonth) != intValue(b.RecurDayOfMonth)
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	profileID := requestProfileID(r)

	var tasks []model.Task
	var err error
	if r.URL.Query().Get("include_inactive") == "true" {
		tasks, err = h.tasks.List(profileID)
	} else {
		tasks, err = h.tasks.ListActive(profileID)
	}
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	if kind := r.URL.Query().Get("kind"); kind != "" {
		filtered := tasks[:0]
		for _, t := range tasks {
			if string(t.Kind) == kind {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.tasks.GetForProfile(id, requestProfileID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	t, msg := req.toModel(requestProfileID(r))
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if t.Kind == model.KindScheduled {
		first := h.firstOccurrence(t)
		t.NextOccurrenceDate = &first
	}

	task, err := h.tasks.Create(t)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EntityTask, "created", task.ID).WithProfile(task.ProfileID))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	profileID := requestProfileID(r)

	existing, err := h.tasks.GetForProfile(id, profileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	t, msg := req.toModel(profileID)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	t.ID = id

	task, err := h.tasks.Update(t)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	// Reconcile the occurrence pointer with the (possibly changed) schedule.
	if t.Kind == model.KindScheduled {
		if recurrenceChanged(*existing, t) || task.NextOccurrenceDate == nil {
			first := h.firstOccurrence(t)
			if err := h.tasks.UpdateOccurrence(id, existing.LastOccurrenceDate, &first); err != nil {
				writeError(w, http.StatusInternalServerError, "failed to update task")
				return
			}
			task, _ = h.tasks.GetByID(id)
		}
	} else if existing.Kind == model.KindScheduled {
		if err := h.tasks.UpdateOccurrence(id, nil, nil); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update task")
			return
		}
		task, _ = h.tasks.GetByID(id)
	}

	h.broadcast(websocket.NewEvent(websocket.EntityTask, "updated", id).WithProfile(profileID))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	profileID := requestProfileID(r)

	deleted, err := h.tasks.Delete(id, profileID)
	if err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EntityTask, "deleted", id).WithProfile(profileID))
	w.WriteHeader(http.StatusNoContent)
}
