package handler

import (
	"log/slog"
	"net/http"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/store"
	"github.com/moresby/homestead/internal/streak"
)

// StreakHandler serves the global streak and per-task streaks.
type StreakHandler struct {
	tasks  *store.TaskStore
	checks *store.CheckStore
	clock  clock.Clock
	logger *slog.Logger
}

func NewStreakHandler(ts *store.TaskStore, cs *store.CheckStore, clk clock.Clock, logger *slog.Logger) *StreakHandler {
	return &StreakHandler{tasks: ts, checks: cs, clock: clk, logger: logger}
}

type streakResponse struct {
	Current   int     `json:"current"`
	LastDate  *string `json:"last_date"`
	TotalDays int     `json:"total_days"`
}

// Global reports the profile's run of consecutive fully-completed days.
func (h *StreakHandler) Global(w http.ResponseWriter, r *http.Request) {
	completed, err := h.checks.ListCompletedDates(requestProfileID(r))
	if err != nil {
		h.logger.Error("list completed dates", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute streak")
		return
	}

	current, last := streak.Global(completed)
	resp := streakResponse{Current: current, TotalDays: len(completed)}
	if last != nil {
		s := dates.Format(*last)
		resp.LastDate = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

// ForTask reports a single task's run of consecutive checked days.
func (h *StreakHandler) ForTask(w http.ResponseWriter, r *http.Request) {
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

	checked, err := h.checks.ListCheckedDates(id)
	if err != nil {
		h.logger.Error("list checked dates", "error", err, "task_id", id)
		writeError(w, http.StatusInternalServerError, "failed to compute streak")
		return
	}

	current, last := streak.ForTask(checked, h.clock.Today())
	resp := streakResponse{Current: current, TotalDays: len(checked)}
	if last != nil {
		s := dates.Format(*last)
		resp.LastDate = &s
	}
	writeJSON(w, http.StatusOK, resp)
}
