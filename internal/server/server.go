// Package server wires stores, the ledger, and handlers into the HTTP
// surface.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/handler"
	"github.com/moresby/homestead/internal/ledger"
	"github.com/moresby/homestead/internal/middleware"
	"github.com/moresby/homestead/internal/store"
	ws "github.com/moresby/homestead/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	profileH    *handler.ProfileHandler
	taskH       *handler.TaskHandler
	dayH        *handler.DayHandler
	scheduledH  *handler.ScheduledHandler
	punchListH  *handler.PunchListHandler
	householdH  *handler.HouseholdHandler
	streakH     *handler.StreakHandler
	historyH    *handler.HistoryHandler
	metricH     *handler.MetricHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, clk clock.Clock, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	profileStore := store.NewProfileStore(db)
	taskStore := store.NewTaskStore(db)
	checkStore := store.NewCheckStore(db)
	householdStore := store.NewHouseholdStore(db)
	metricStore := store.NewMetricStore(db)

	led := ledger.New(taskStore, checkStore, householdStore, metricStore, clk, logger.With("component", "ledger"))

	return &Server{
		db:          db,
		hub:         hub,
		profileH:    handler.NewProfileHandler(profileStore, hub, logger.With("component", "profile")),
		taskH:       handler.NewTaskHandler(taskStore, clk, hub, logger.With("component", "task")),
		dayH:        handler.NewDayHandler(taskStore, checkStore, metricStore, led, clk, hub, logger.With("component", "day")),
		scheduledH:  handler.NewScheduledHandler(taskStore, clk, logger.With("component", "scheduled")),
		punchListH:  handler.NewPunchListHandler(taskStore, led, hub, logger.With("component", "punch_list")),
		householdH:  handler.NewHouseholdHandler(householdStore, profileStore, led, clk, hub, logger.With("component", "household")),
		streakH:     handler.NewStreakHandler(taskStore, checkStore, clk, logger.With("component", "streak")),
		historyH:    handler.NewHistoryHandler(checkStore, clk, logger.With("component", "history")),
		metricH:     handler.NewMetricHandler(metricStore, led, hub, logger.With("component", "metric")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Hub returns the websocket hub so background jobs can broadcast.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Profiles
	mux.HandleFunc("GET /api/profiles", s.profileH.List)
	mux.HandleFunc("POST /api/profiles", s.profileH.Create)
	mux.HandleFunc("PUT /api/profiles/{id}", s.profileH.Update)
	mux.HandleFunc("DELETE /api/profiles/{id}", s.profileH.Delete)

	// PIN routes; verify is rate limited against guessing
	mux.HandleFunc("POST /api/profiles/{id}/pin", s.profileH.SetPIN)
	mux.HandleFunc("DELETE /api/profiles/{id}/pin", s.profileH.ClearPIN)
	mux.HandleFunc("POST /api/profiles/{id}/pin/verify", s.rateLimitedHandler(s.profileH.VerifyPIN))

	// Personal tasks
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("GET /api/tasks/{id}/streak", s.streakH.ForTask)

	// Day view and checks
	mux.HandleFunc("GET /api/days/today", s.dayH.Today)
	mux.HandleFunc("GET /api/days/{date}", s.dayH.Get)
	mux.HandleFunc("PUT /api/days/{date}/checks/{id}", s.dayH.SetCheck)

	// Scheduled and punch list views
	mux.HandleFunc("GET /api/scheduled/upcoming", s.scheduledH.Upcoming)
	mux.HandleFunc("GET /api/punch-list", s.punchListH.List)
	mux.HandleFunc("POST /api/punch-list/{id}/complete", s.punchListH.Complete)
	mux.HandleFunc("POST /api/punch-list/{id}/uncomplete", s.punchListH.Uncomplete)

	// Household board
	mux.HandleFunc("GET /api/household/tasks", s.householdH.List)
	mux.HandleFunc("POST /api/household/tasks", s.householdH.Create)
	mux.HandleFunc("GET /api/household/tasks/{id}", s.householdH.Get)
	mux.HandleFunc("PUT /api/household/tasks/{id}", s.householdH.Update)
	mux.HandleFunc("DELETE /api/household/tasks/{id}", s.householdH.Delete)
	mux.HandleFunc("GET /api/household/overdue", s.householdH.Overdue)
	mux.HandleFunc("POST /api/household/tasks/{id}/complete", s.householdH.Complete)
	mux.HandleFunc("DELETE /api/household/tasks/{id}/completions/last", s.householdH.UndoComplete)
	mux.HandleFunc("GET /api/household/tasks/{id}/completions", s.householdH.History)

	// Streak and history
	mux.HandleFunc("GET /api/streak", s.streakH.Global)
	mux.HandleFunc("GET /api/history/{year}/{month}", s.historyH.Month)

	// Metrics ingest
	mux.HandleFunc("POST /api/metrics", s.metricH.Ingest)
	mux.HandleFunc("GET /api/metrics/{date}", s.metricH.ListForDate)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return "pin:" + middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
