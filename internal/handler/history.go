package handler

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/dates"
	"github.com/moresby/homestead/internal/store"
)

// HistoryHandler serves the month calendar of completed days.
type HistoryHandler struct {
	checks *store.CheckStore
	clock  clock.Clock
	logger *slog.Logger
}

func NewHistoryHandler(cs *store.CheckStore, clk clock.Clock, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{checks: cs, clock: clk, logger: logger}
}

type historyDay struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type monthResponse struct {
	Year        int                   `json:"year"`
	Month       int                   `json:"month"`
	DaysInMonth int                   `json:"days_in_month"`
	// Weekday of the 1st, 0 = Monday.
	FirstDayWeekday int                   `json:"first_day_weekday"`
	Days            map[string]historyDay `json:"days"`

	TotalDays      int     `json:"total_days"`
	CompletedDays  int     `json:"completed_days"`
	CompletionRate float64 `json:"completion_rate"`
}

func (h *HistoryHandler) monthParams(r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1970 || year > 9999 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// Month returns the completion map for a calendar month plus its
// completion stats. Days after today never count against the rate, so a
// month in progress isn't penalized for days that haven't happened yet.
func (h *HistoryHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.monthParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	daysInMonth := dates.DaysInMonth(year, month)
	first := dates.New(year, month, 1)
	last := dates.New(year, month, daysInMonth)

	statuses, err := h.checks.ListStatusesInRange(requestProfileID(r), first, last)
	if err != nil {
		h.logger.Error("list statuses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	days := make(map[string]historyDay, len(statuses))
	completedDays := 0
	for _, s := range statuses {
		completed := s.CompletedAt != nil
		days[dates.Format(s.Date)] = historyDay{Completed: completed, CompletedAt: s.CompletedAt}
		if completed {
			completedDays++
		}
	}

	today := h.clock.Today()
	totalDays := daysInMonth
	if first.After(today) {
		totalDays = 0
	} else if last.After(today) {
		totalDays = today.Day()
	}

	rate := 0.0
	if totalDays > 0 {
		rate = math.Round(float64(completedDays)/float64(totalDays)*1000) / 10
	}

	// 0 = Monday, matching the calendar grid's leading column.
	firstWeekday := (int(first.Weekday()) + 6) % 7

	writeJSON(w, http.StatusOK, monthResponse{
		Year:            year,
		Month:           int(month),
		DaysInMonth:     daysInMonth,
		FirstDayWeekday: firstWeekday,
		Days:            days,
		TotalDays:       totalDays,
		CompletedDays:   completedDays,
		CompletionRate:  rate,
	})
}
