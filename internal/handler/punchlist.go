package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/moresby/homestead/internal/ledger"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/store"
	"github.com/moresby/homestead/internal/websocket"
)

// PunchListHandler serves the one-shot task list and its complete and
// uncomplete actions. Creation and editing go through the task CRUD.
type PunchListHandler struct {
	tasks  *store.TaskStore
	ledger *ledger.Ledger
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPunchListHandler(ts *store.TaskStore, l *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *PunchListHandler {
	return &PunchListHandler{tasks: ts, ledger: l, hub: hub, logger: logger}
}

func (h *PunchListHandler) broadcast(e websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(e)
	}
}

// List returns punch list items sorted by due date, undated last.
// Archived items stay hidden unless ?include_archived=true.
func (h *PunchListHandler) List(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	tasks, err := h.tasks.ListPunchList(requestProfileID(r), includeArchived)
	if err != nil {
		h.logger.Error("list punch list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list punch list")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *PunchListHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, true)
}

func (h *PunchListHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, false)
}

func (h *PunchListHandler) setCompleted(w http.ResponseWriter, r *http.Request, done bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	profileID := requestProfileID(r)

	var task *model.Task
	if done {
		task, err = h.ledger.CompletePunchList(id, profileID)
	} else {
		task, err = h.ledger.UncompletePunchList(id, profileID)
	}
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, "punch list item not found")
		return
	}
	if err != nil {
		h.logger.Error("set punch list completed", "error", err, "task_id", id, "done", done)
		writeError(w, http.StatusInternalServerError, "failed to update punch list item")
		return
	}

	h.broadcast(websocket.NewEvent(websocket.EntityTask, "updated", id).WithProfile(profileID))
	writeJSON(w, http.StatusOK, task)
}
