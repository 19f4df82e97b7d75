package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/store"
)

const defaultUpcomingDays = 14

// ScheduledHandler serves the upcoming view of interval tasks.
type ScheduledHandler struct {
	tasks  *store.TaskStore
	clock  clock.Clock
	logger *slog.Logger
}

func NewScheduledHandler(ts *store.TaskStore, clk clock.Clock, logger *slog.Logger) *ScheduledHandler {
	return &ScheduledHandler{tasks: ts, clock: clk, logger: logger}
}

// Upcoming lists active scheduled tasks due within ?days= of today,
// soonest first.
func (h *ScheduledHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days := defaultUpcomingDays
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = n
	}

	tasks, err := h.tasks.ListUpcomingScheduled(requestProfileID(r), h.clock.Today(), days)
	if err != nil {
		h.logger.Error("list upcoming scheduled", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list scheduled tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}
