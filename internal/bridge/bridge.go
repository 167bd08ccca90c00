// Package bridge joins the three parties that hold seat-lock state: the
// shared cache (fast reads), the registrar (the authority), and the
// local event mirror (grid dimensions).  It is a resilient relay, not a
// lock manager: reads never fail, and a lost lock attempt is reported in
// the result instead of thrown at the caller.
package bridge

import (
	"context"
	"log"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

// Cache is the shared seat-lock cache surface the bridge needs.
// Implemented by seatcache.Store.
type Cache interface {
	SeatMap(ctx context.Context, eventID int64) (model.SeatMap, error)
	MergeLockResult(ctx context.Context, eventID int64, res model.LockResult) error
}

// Locker acquires temporary seat locks at the registrar.  Implemented by
// registrar.Client.
type Locker interface {
	LockSeats(ctx context.Context, eventID int64, seats []model.SeatRef) (model.LockResult, error)
}

// EventSource resolves registrar event ids to the local mirror, which
// knows each event's grid dimensions.
type EventSource interface {
	ByRegistrarID(ctx context.Context, registrarID int64) (*model.Event, error)
}

// Bridge is the seat lock bridge.  A nil cache is allowed and means the
// shared cache is unreachable; reads then degrade to synthesized maps
// and lock results are simply not mirrored.
type Bridge struct {
	cache  Cache
	locker Locker
	events EventSource
}

// New constructs a Bridge.  locker and events must be non-nil; cache may
// be nil when Redis was unavailable at startup.
func New(cache Cache, locker Locker, events EventSource) *Bridge {
	return &Bridge{cache: cache, locker: locker, events: events}
}

// SeatMap returns the event's seat map.  It never fails: on a cache miss
// (or cache outage) it synthesizes an all-free map from the event's
// stored dimensions, and when even those are unknown it returns an empty
// map.  Treating unknown as free is safe because the registrar re-checks
// every seat at lock time.
func (b *Bridge) SeatMap(ctx context.Context, eventID int64) model.SeatMap {
	if b.cache != nil {
		m, err := b.cache.SeatMap(ctx, eventID)
		if err == nil {
			return m
		}
		// Miss and outage degrade the same way; only log real trouble.
	}
	return b.synthesize(ctx, eventID)
}

// LockSeats asks the registrar to lock the given seats and, on success,
// mirrors the outcome into the shared cache.  Failures of any kind are
// absorbed into the LockResult: the caller gets a verdict, never a
// panic or an error, and decides for itself whether to retry.
func (b *Bridge) LockSeats(ctx context.Context, eventID int64, seats []model.SeatRef) model.LockResult {
	res, err := b.locker.LockSeats(ctx, eventID, seats)
	if err != nil {
		log.Printf("bridge: lock call failed for event %d: %v", eventID, err)
		return model.LockResult{
			OK:          false,
			Message:     "could not reach the booking service: " + err.Error(),
			Locked:      []model.SeatRef{},
			Unavailable: []model.SeatRef{},
		}
	}

	if res.OK && b.cache != nil {
		if err := b.cache.MergeLockResult(ctx, eventID, res); err != nil {
			// The registrar holds the truth; a stale mirror self-heals
			// on the next successful lock.
			log.Printf("bridge: cache update failed for event %d: %v", eventID, err)
		}
	}
	return res
}

// synthesize builds an all-free map from the event's grid dimensions, or
// an empty map when the event or its dimensions are unknown.
func (b *Bridge) synthesize(ctx context.Context, eventID int64) model.SeatMap {
	m := model.SeatMap{EventID: eventID, Seats: []model.Seat{}}
	ev, err := b.events.ByRegistrarID(ctx, eventID)
	if err != nil || ev.SeatRows <= 0 || ev.SeatCols <= 0 {
		return m
	}
	m.Seats = make([]model.Seat, 0, ev.SeatRows*ev.SeatCols)
	for row := 1; row <= ev.SeatRows; row++ {
		for col := 1; col <= ev.SeatCols; col++ {
			m.Seats = append(m.Seats, model.Seat{Row: row, Column: col, State: model.SeatFree})
		}
	}
	return m
}
