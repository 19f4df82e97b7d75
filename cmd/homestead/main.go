package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moresby/homestead/internal/clock"
	"github.com/moresby/homestead/internal/database"
	"github.com/moresby/homestead/internal/logging"
	"github.com/moresby/homestead/internal/server"
	"github.com/moresby/homestead/internal/store"
	"github.com/moresby/homestead/internal/sweep"
)

func main() {
	logger := logging.Setup(os.Getenv("HOMESTEAD_LOG_LEVEL"))

	port := os.Getenv("HOMESTEAD_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("HOMESTEAD_DB_PATH")
	if dbPath == "" {
		dbPath = "homestead.db"
	}

	tz := os.Getenv("HOMESTEAD_TZ")
	if tz == "" {
		tz = "Local"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Error("invalid HOMESTEAD_TZ", "tz", tz, "error", err)
		os.Exit(1)
	}
	clk := clock.New(loc)

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, clk, logger)

	sweepInterval := time.Hour
	if s := os.Getenv("HOMESTEAD_SWEEP_INTERVAL"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			logger.Error("invalid HOMESTEAD_SWEEP_INTERVAL", "value", s, "error", err)
			os.Exit(1)
		}
		sweepInterval = d
	}

	sweeper := sweep.New(store.NewTaskStore(db), store.NewHouseholdStore(db), clk, logger.With("component", "sweep"))
	runner := sweep.NewRunner(sweeper, sweepInterval, logger.With("component", "sweep"))
	runner.Start(context.Background())
	defer runner.Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Homestead running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
