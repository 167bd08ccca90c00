// Package scheduler drives the background confirmation of pending
// sales.  It does nothing clever itself: every tick it asks the sale
// store for retry candidates and hands each one to the orchestrator,
// which owns the attempt counting and terminal-state rules.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

// Interval is how often the retry pass runs.
const Interval = 2 * time.Minute

// PendingSource lists sales still awaiting confirmation.  Implemented
// by repository.SaleRepo.
type PendingSource interface {
	PendingForRetry(ctx context.Context, maxRetries int) ([]*model.Sale, error)
}

// Retrier re-attempts one sale.  Implemented by sale.Service.
type Retrier interface {
	Retry(ctx context.Context, s *model.Sale) bool
}

// RetryScheduler periodically retries pending sales.
type RetryScheduler struct {
	sales      PendingSource
	retrier    Retrier
	maxRetries int
	interval   time.Duration
}

// New constructs a scheduler ticking at the default Interval.
func New(sales PendingSource, retrier Retrier, maxRetries int) *RetryScheduler {
	return &RetryScheduler{
		sales:      sales,
		retrier:    retrier,
		maxRetries: maxRetries,
		interval:   Interval,
	}
}

// Run loops until ctx is cancelled, executing one retry pass per tick.
// Run it in its own goroutine.
func (r *RetryScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	log.Printf("scheduler: sale retry loop started, interval %s", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: sale retry loop stopped")
			return
		case <-ticker.C:
			r.Pass(ctx)
		}
	}
}

// Pass runs a single retry cycle.  Each sale is retried independently
// so one bad sale cannot block the rest of the batch; candidates at the
// retry limit are included so the orchestrator can close them out.
func (r *RetryScheduler) Pass(ctx context.Context) {
	pending, err := r.sales.PendingForRetry(ctx, r.maxRetries)
	if err != nil {
		log.Printf("scheduler: could not list pending sales: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	confirmed := 0
	for _, s := range pending {
		if ctx.Err() != nil {
			return
		}
		if r.retrier.Retry(ctx, s) {
			confirmed++
		}
	}
	log.Printf("scheduler: retry pass done, %d of %d pending sales confirmed", confirmed, len(pending))
}
