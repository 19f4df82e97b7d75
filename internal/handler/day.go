package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/ledger"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/store"
	"github.com/moresby/homestead/internal/streak"
	"github.com/moresby/homestead/internal/websocket"
)

// DayHandler serves the day view: the checkable tasks for a date, their
// check state, and the aggregate completion status with streak info.
type DayHandler struct {
	tasks   *store.TaskStore
	checks  *store.CheckStore
	metrics *store.MetricStore
	ledger  *ledger.Ledger
	clock   clock.Clock
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewDayHandler(ts *store.TaskStore, cs *store.CheckStore, ms *store.MetricStore, l *ledger.Ledger, clk clock.Clock, hub *websocket.Hub, logger *slog.Logger) *DayHandler {
	return &DayHandler{tasks: ts, checks: cs, metrics: ms, ledger: l, clock: clk, hub: hub, logger: logger}
}

type dayTask struct {
	model.Task
	Checked     bool       `json:"checked"`
	CheckedAt   *time.Time `json:"checked_at"`
	MetricValue *float64   `json:"metric_value,omitempty"`
}

type streakInfo struct {
	Current  int     `json:"current"`
	LastDate *string `json:"last_date"`
}

type dayResponse struct {
	Date                string     `json:"date"`
	Tasks               []dayTask  `json:"tasks"`
	AllRequiredComplete bool       `json:"all_required_complete"`
	CompletedAt         *time.Time `json:"completed_at"`
	Streak              streakInfo `json:"streak"`
}

func (h *DayHandler) Today(w http.ResponseWriter, r *http.Request) {
	h.serveDay(w, r, h.clock.Today())
}

func (h *DayHandler) Get(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}
	h.serveDay(w, r, date)
}

func (h *DayHandler) serveDay(w http.ResponseWriter, r *http.Request, date time.Time) {
	profileID := requestProfileID(r)

	if err := h.ledger.EnsureChecks(date, profileID); err != nil {
		h.logger.Error("ensure checks", "error", err, "date", dates.Format(date))
		writeError(w, http.StatusInternalServerError, "failed to prepare day")
		return
	}

	active, err := h.tasks.ListActive(profileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	checks, err := h.checks.ListForDate(date, profileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list checks")
		return
	}
	checkByTask := make(map[int64]model.TaskCheck, len(checks))
	for _, c := range checks {
		checkByTask[c.TaskID] = c
	}

	samples, err := h.metrics.ListForDate(profileID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list metrics")
		return
	}
	valueByMetric := make(map[string]float64, len(samples))
	for _, m := range samples {
		valueByMetric[m.MetricType] = m.Value
	}

	// Daily tasks always appear; scheduled tasks only on a date they were
	// materialized for. Punch list items live on their own page.
	tasks := make([]dayTask, 0, len(active))
	for _, t := range active {
		check, hasCheck := checkByTask[t.ID]
		switch t.Kind {
		case model.KindDaily:
		case model.KindScheduled:
			if !hasCheck {
				continue
			}
		default:
			continue
		}

		dt := dayTask{Task: t, Checked: check.Checked, CheckedAt: check.CheckedAt}
		if t.GoalMetricType != "" {
			if v, ok := valueByMetric[t.GoalMetricType]; ok {
				dt.MetricValue = &v
			}
		}
		tasks = append(tasks, dt)
	}

	status, err := h.checks.GetDailyStatus(date, profileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get daily status")
		return
	}

	completed, err := h.checks.ListCompletedDates(profileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute streak")
		return
	}
	current, lastDate := streak.Global(completed)

	resp := dayResponse{
		Date:   dates.Format(date),
		Tasks:  tasks,
		Streak: streakInfo{Current: current},
	}
	if lastDate != nil {
		s := dates.Format(*lastDate)
		resp.Streak.LastDate = &s
	}
	if status != nil && status.CompletedAt != nil {
		resp.AllRequiredComplete = true
		resp.CompletedAt = status.CompletedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

type checkRequest struct {
	Checked bool `json:"checked"`
}

// SetCheck toggles a task's check for a date and returns the updated row.
func (h *DayHandler) SetCheck(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}
	taskID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	profileID := requestProfileID(r)
	check, err := h.ledger.SetCheck(date, taskID, req.Checked, profileID)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.logger.Error("set check", "error", err, "task_id", taskID)
		writeError(w, http.StatusInternalServerError, "failed to update check")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewEvent(websocket.EntityCheck, "updated", taskID).
			WithProfile(profileID).WithDate(dates.Format(date)))
	}
	writeJSON(w, http.StatusOK, check)
}
