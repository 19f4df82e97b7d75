package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/ledger"
	"github.com/moresby/homestead/internal/model"
	"github.com/moresby/homestead/internal/store"
	"github.com/moresby/homestead/internal/websocket"
)

// MetricHandler ingests numeric samples from external sources and
// re-evaluates goal auto-checks for the affected day.
type MetricHandler struct {
	metrics *store.MetricStore
	ledger  *ledger.Ledger
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMetricHandler(ms *store.MetricStore, l *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *MetricHandler {
	return &MetricHandler{metrics: ms, ledger: l, hub: hub, logger: logger}
}

type metricRequest struct {
	Date       string  `json:"date"`
	MetricType string  `json:"metric_type"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
}

// Ingest upserts a sample for (profile, date, type); a later sync for the
// same key overwrites. Goal auto-checks run immediately, so a revised
// value can both check and uncheck tasks.
func (h *MetricHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req metricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.MetricType = strings.TrimSpace(req.MetricType)
	if req.MetricType == "" {
		writeError(w, http.StatusBadRequest, "metric_type is required")
		return
	}
	date, err := dates.Parse(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	profileID := requestProfileID(r)
	sample := model.MetricSample{
		ProfileID:  profileID,
		Date:       date,
		MetricType: req.MetricType,
		Value:      req.Value,
		Unit:       req.Unit,
	}
	if err := h.metrics.Upsert(sample); err != nil {
		h.logger.Error("upsert metric", "error", err, "metric_type", req.MetricType)
		writeError(w, http.StatusInternalServerError, "failed to store sample")
		return
	}

	result, err := h.ledger.ApplyGoalChecks(date, profileID)
	if err != nil {
		h.logger.Error("apply goal checks", "error", err, "date", req.Date)
		writeError(w, http.StatusInternalServerError, "failed to evaluate goals")
		return
	}

	if h.hub != nil && (result.Checked > 0 || result.Unchecked > 0) {
		h.hub.Broadcast(websocket.NewEvent(websocket.EntityMetric, "applied", 0).
			WithProfile(profileID).WithDate(req.Date))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sample": sample,
		"goals":  result,
	})
}

// ListForDate returns the samples stored for a date.
func (h *MetricHandler) ListForDate(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	samples, err := h.metrics.ListForDate(requestProfileID(r), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list samples")
		return
	}
	if samples == nil {
		samples = []model.MetricSample{}
	}
	writeJSON(w, http.StatusOK, samples)
}
