package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner drives the sweeps on a fixed interval. One pass also runs
// immediately on start so a freshly booted service doesn't serve stale
// pointers until the first tick.
type Runner struct {
	mu       sync.RWMutex
	sweeper  *Sweeper
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewRunner(sweeper *Sweeper, interval time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the sweep loop.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	r.mu.Unlock()

	go func() {
		defer close(r.done)

		r.runOnce(ctx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.runOnce(ctx)
			}
		}
	}()
}

// Stop gracefully stops the loop and waits for an in-flight pass.
func (r *Runner) Stop() {
	r.mu.RLock()
	cancel := r.cancel
	done := r.done
	r.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if _, err := r.sweeper.RefreshStaleRecurrences(ctx); err != nil {
		r.logger.Error("refresh recurrences sweep", "error", err)
	}
	if _, err := r.sweeper.ArchiveOldCompleted(ctx, DefaultArchiveAfterDays); err != nil {
		r.logger.Error("archive sweep", "error", err)
	}
}
