package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/household"
	"github.com/moresby/homestead/internal/ledger"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/store"
	"github.com/moresby/homestead/internal/websocket"
)

const defaultHistoryLimit = 20

// HouseholdHandler serves the shared chore board. Unlike personal tasks
// these are not scoped by profile; the requesting profile only matters
// for completion attribution.
type HouseholdHandler struct {
	household *store.HouseholdStore
	profiles  *store.ProfileStore
	ledger    *ledger.Ledger
	clock     clock.Clock
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, ps *store.ProfileStore, l *ledger.Ledger, clk clock.Clock, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{household: hs, profiles: ps, ledger: l, clock: clk, hub: hub, logger: logger}
}

func (h *HouseholdHandler) broadcast(e websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(e)
	}
}

// withStatus enriches a task with its derived status and the latest
// completion's attribution.
func (h *HouseholdHandler) withStatus(t model.HouseholdTask, today time.Time) (household.TaskWithStatus, error) {
	last, err := h.household.LastCompletion(t.ID)
	if err != nil {
		return household.TaskWithStatus{}, err
	}

	var lastAt *time.Time
	if last != nil {
		lastAt = &last.CompletedAt
	}
	status, due := household.ComputeStatus(t, lastAt, today)

	out := household.TaskWithStatus{HouseholdTask: t, Status: status, CurrentDue: due}
	if last != nil {
		out.LastCompletedAt = &last.CompletedAt
		out.LastCompletedBy = &last.CompletedBy
		days := dates.DaysBetween(last.CompletedAt, today)
		out.DaysSinceCompletion = &days
		if p, err := h.profiles.GetByID(last.CompletedBy); err == nil && p != nil {
			out.LastCompletedByName = p.Name
		}
	}
	return out, nil
}

func (h *HouseholdHandler) listWithStatus(tasks []model.HouseholdTask) ([]household.TaskWithStatus, error) {
	today := h.clock.Today()
	out := make([]household.TaskWithStatus, 0, len(tasks))
	for _, t := range tasks {
		ts, err := h.withStatus(t, today)
		if err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, nil
}

// List returns household tasks with derived status, optionally filtered
// by ?frequency= and including inactive ones with ?include_inactive=true.
func (h *HouseholdHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	var tasks []model.HouseholdTask
	var err error
	if freq := r.URL.Query().Get("frequency"); freq != "" {
		if !validFrequency(model.Frequency(freq)) {
			writeError(w, http.StatusBadRequest, "invalid frequency")
			return
		}
		tasks, err = h.household.ListByFrequency(model.Frequency(freq), includeInactive)
	} else {
		tasks, err = h.household.List(includeInactive)
	}
	if err != nil {
		h.logger.Error("list household tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list household tasks")
		return
	}

	enriched, err := h.listWithStatus(tasks)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to derive status")
		return
	}
	writeJSON(w, http.StatusOK, enriched)
}

// Overdue returns only the tasks whose last due window was missed.
func (h *HouseholdHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.household.List(false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list household tasks")
		return
	}

	enriched, err := h.listWithStatus(tasks)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to derive status")
		return
	}

	overdue := make([]household.TaskWithStatus, 0, len(enriched))
	for _, t := range enriched {
		if t.Status == household.StatusOverdue {
			overdue = append(overdue, t)
		}
	}
	writeJSON(w, http.StatusOK, overdue)
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.household.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get household task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "household task not found")
		return
	}

	enriched, err := h.withStatus(*task, h.clock.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to derive status")
		return
	}
	writeJSON(w, http.StatusOK, enriched)
}

type householdRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Frequency    string `json:"frequency"`
	ScheduleMode string `json:"schedule_mode"`
	DayOfWeek    *int   `json:"day_of_week"`
	DayOfMonth   *int   `json:"day_of_month"`
	Month        *int   `json:"month"`
	Day          *int   `json:"day"`
	DueDate      string `json:"due_date"`
	SortOrder    int    `json:"sort_order"`
	IsActive     *bool  `json:"is_active"`
}

func validFrequency(f model.Frequency) bool {
	switch f {
	case model.FreqWeekly, model.FreqBiweekly, model.FreqMonthly,
		model.FreqQuarterly, model.FreqAnnual, model.FreqTodo:
		return true
	}
	return false
}

func (r *householdRequest) toModel() (model.HouseholdTask, string) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return model.HouseholdTask{}, "title is required"
	}
	if !validFrequency(model.Frequency(r.Frequency)) {
		return model.HouseholdTask{}, "invalid frequency"
	}

	mode := model.ScheduleMode(r.ScheduleMode)
	if mode == "" {
		mode = model.ModeCalendar
	}
	if mode != model.ModeCalendar && mode != model.ModeRolling {
		return model.HouseholdTask{}, "schedule_mode must be calendar or rolling"
	}

	t := model.HouseholdTask{
		Title:        r.Title,
		Description:  r.Description,
		Icon:         r.Icon,
		Frequency:    model.Frequency(r.Frequency),
		ScheduleMode: mode,
		DayOfWeek:    r.DayOfWeek,
		DayOfMonth:   r.DayOfMonth,
		Month:        r.Month,
		Day:          r.Day,
		SortOrder:    r.SortOrder,
		IsActive:     true,
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
	if t.Icon == "" {
		t.Icon = defaultHouseholdIcon(t.Title)
	}
	if r.DueDate != "" {
		d, err := dates.Parse(r.DueDate)
		if err != nil {
			return model.HouseholdTask{}, "due_date must be YYYY-MM-DD"
		}
		t.DueDate = &d
	}
	return t, ""
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	t, msg := req.toModel()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.household.Create(t)
	if err != nil {
		h.logger.Error("create household task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create household task")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EntityHousehold, "created", task.ID))
	writeJSON(w, http.StatusCreated, task)
}

func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.household.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get household task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "household task not found")
		return
	}

	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	t, msg := req.toModel()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	t.ID = id

	task, err := h.household.Update(t)
	if err != nil {
		h.logger.Error("update household task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update household task")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EntityHousehold, "updated", id))
	writeJSON(w, http.StatusOK, task)
}

func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	deleted, err := h.household.Delete(id)
	if err != nil {
		h.logger.Error("delete household task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete household task")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "household task not found")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EntityHousehold, "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

type completeRequest struct {
	Notes string `json:"notes"`
}

// Complete logs a completion attributed to the requesting profile and
// returns the task with its advanced schedule.
func (h *HouseholdHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req completeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	profileID := requestProfileID(r)
	if _, err := h.ledger.CompleteHousehold(id, profileID, req.Notes); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, "household task not found")
			return
		}
		h.logger.Error("complete household task", "error", err, "task_id", id)
		writeError(w, http.StatusInternalServerError, "failed to complete household task")
		return
	}

	task, err := h.household.GetByID(id)
	if err != nil || task == nil {
		writeError(w, http.StatusInternalServerError, "failed to reload household task")
		return
	}
	enriched, err := h.withStatus(*task, h.clock.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to derive status")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EntityHousehold, "completed", id).WithProfile(profileID))
	writeJSON(w, http.StatusOK, enriched)
}

// UndoComplete removes only the most recent completion log entry.
func (h *HouseholdHandler) UndoComplete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.ledger.UndoLastHouseholdCompletion(id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no completions to undo")
			return
		}
		h.logger.Error("undo household completion", "error", err, "task_id", id)
		writeError(w, http.StatusInternalServerError, "failed to undo completion")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EntityHousehold, "completion_undone", id))
	w.WriteHeader(http.StatusNoContent)
}

type completionEntry struct {
	model.HouseholdCompletion
	CompletedByName string `json:"completed_by_name,omitempty"`
}

// History returns the task's completion log, newest first, capped by
// ?limit=.
func (h *HouseholdHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.household.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get household task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "household task not found")
		return
	}

	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	completions, err := h.household.ListCompletions(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}

	names := make(map[int64]string)
	entries := make([]completionEntry, 0, len(completions))
	for _, c := range completions {
		name, ok := names[c.CompletedBy]
		if !ok {
			if p, err := h.profiles.GetByID(c.CompletedBy); err == nil && p != nil {
				name = p.Name
			}
			names[c.CompletedBy] = name
		}
		entries = append(entries, completionEntry{HouseholdCompletion: c, CompletedByName: name})
	}
	writeJSON(w, http.StatusOK, entries)
}
