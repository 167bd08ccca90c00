// Package warmup primes the shared seat cache at startup.  A fresh
// cache has no entry for any event, so every read degrades to a
// synthesized all-free map.  Locking a single seat per event forces the
// registrar to answer with real availability, and the bridge's
// write-through merge turns that answer into a cache entry.  The whole
// pass is best-effort: any event it cannot warm is skipped and the
// cache self-heals on the first real lock.
package warmup

import (
	"context"
	"log"
	"time"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

const (
	// settleDelay gives the rest of the process time to finish starting
	// before the warmup begins issuing registrar calls.
	settleDelay = 5 * time.Second
	// attemptDelay spaces consecutive lock probes for one event.
	attemptDelay = 200 * time.Millisecond
	// maxMapCandidates caps how many free seats from the cached map are
	// tried before falling back to grid scanning.
	maxMapCandidates = 20
)

// SeatBridge is the bridge surface the warmup drives.
type SeatBridge interface {
	SeatMap(ctx context.Context, eventID int64) model.SeatMap
	LockSeats(ctx context.Context, eventID int64, seats []model.SeatRef) model.LockResult
}

// EventSource lists the events worth warming.
type EventSource interface {
	Active(ctx context.Context, now time.Time) ([]*model.Event, error)
}

// Warmup is the one-shot cache priming task.
type Warmup struct {
	bridge SeatBridge
	events EventSource
	settle time.Duration
	pace   time.Duration
}

// New constructs a Warmup with the default delays.
func New(bridge SeatBridge, events EventSource) *Warmup {
	return &Warmup{bridge: bridge, events: events, settle: settleDelay, pace: attemptDelay}
}

// Run waits for the settle delay, then warms every active event once.
// Run it in its own goroutine; it returns when done or when ctx is
// cancelled.
func (w *Warmup) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(w.settle):
	}

	events, err := w.events.Active(ctx, time.Now())
	if err != nil {
		log.Printf("warmup: could not list active events: %v", err)
		return
	}
	if len(events) == 0 {
		log.Println("warmup: no active events to warm")
		return
	}

	warmed := 0
	for _, e := range events {
		if ctx.Err() != nil {
			return
		}
		if w.warmEvent(ctx, e) {
			warmed++
		}
	}
	log.Printf("warmup: done, %d of %d events warmed", warmed, len(events))
}

// warmEvent tries to lock one seat for the event, working through three
// candidate pools of increasing cost: free seats from whatever map is
// already readable, a small block of conventional front-grid
// coordinates, and finally the event's full grid.  One successful lock
// is enough; the merge it triggers creates the cache entry.
func (w *Warmup) warmEvent(ctx context.Context, e *model.Event) bool {
	for _, seat := range w.candidates(ctx, e) {
		if ctx.Err() != nil {
			return false
		}
		res := w.bridge.LockSeats(ctx, e.RegistrarID, []model.SeatRef{seat})
		if res.OK {
			log.Printf("warmup: event %d warmed via seat %d-%d", e.RegistrarID, seat.Row, seat.Column)
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(w.pace):
		}
	}
	log.Printf("warmup: event %d could not be warmed", e.RegistrarID)
	return false
}

func (w *Warmup) candidates(ctx context.Context, e *model.Event) []model.SeatRef {
	var out []model.SeatRef
	seen := make(map[model.SeatRef]bool)
	add := func(s model.SeatRef) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	m := w.bridge.SeatMap(ctx, e.RegistrarID)
	free := 0
	for _, seat := range m.Seats {
		if seat.State != model.SeatFree {
			continue
		}
		add(model.SeatRef{Row: seat.Row, Column: seat.Column})
		free++
		if free >= maxMapCandidates {
			break
		}
	}

	// Conventional fallback block near the front of the grid.
	for row := 1; row <= 3; row++ {
		for col := 1; col <= 5; col++ {
			add(model.SeatRef{Row: row, Column: col})
		}
	}

	// Last resort: the whole grid, when dimensions are known.
	for row := 1; row <= e.SeatRows; row++ {
		for col := 1; col <= e.SeatCols; col++ {
			add(model.SeatRef{Row: row, Column: col})
		}
	}
	return out
}
