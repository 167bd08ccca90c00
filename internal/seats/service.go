// Package seats serves the caller-facing seat operations: the seat map
// annotated with the caller's own selection, and locking the seats a
// caller has selected.
package seats

import (
	"context"
	"fmt"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/session"
)

// SeatBridge is the slice of the seat lock bridge this service uses.
type SeatBridge interface {
	SeatMap(ctx context.Context, eventID int64) model.SeatMap
	LockSeats(ctx context.Context, eventID int64, seats []model.SeatRef) model.LockResult
}

// Sessions is the selection-store surface this service reads.
type Sessions interface {
	Get(userID string) (*session.Selection, bool)
}

// Service aggregates the canonical seat map with per-user selections.
type Service struct {
	bridge   SeatBridge
	sessions Sessions
}

// New constructs the service.
func New(bridge SeatBridge, sessions Sessions) *Service {
	return &Service{bridge: bridge, sessions: sessions}
}

// SeatMap returns the event's seat map with SelectedByMe set on every
// seat present in the caller's selection for that same event.  The flag
// is recomputed on every call and never persisted; an absent or
// mismatched selection simply yields an unflagged map, not an error.
func (s *Service) SeatMap(ctx context.Context, eventID int64, userID string) model.SeatMap {
	m := s.bridge.SeatMap(ctx, eventID)

	sel, ok := s.sessions.Get(userID)
	if !ok || sel.EventID == nil || *sel.EventID != eventID {
		return m
	}

	mine := make(map[string]bool, len(sel.Seats))
	for _, seat := range sel.Seats {
		mine[seat.Key()] = true
	}
	for i := range m.Seats {
		k := fmt.Sprintf("%d-%d", m.Seats[i].Row, m.Seats[i].Column)
		if mine[k] {
			m.Seats[i].SelectedByMe = true
		}
	}
	return m
}

// LockSelected locks the seats currently in the caller's selection.  The
// selection must exist, hold at least one seat, and be for the given
// event; otherwise a failed LockResult explains why.  These are verdicts
// for the caller, not errors: seat locking never throws.
func (s *Service) LockSelected(ctx context.Context, eventID int64, userID string) model.LockResult {
	sel, ok := s.sessions.Get(userID)
	if !ok || len(sel.Seats) == 0 {
		return failed("no seats selected to lock")
	}
	if sel.EventID == nil || *sel.EventID != eventID {
		return failed("selection is for a different event")
	}

	refs := make([]model.SeatRef, 0, len(sel.Seats))
	for _, seat := range sel.Seats {
		refs = append(refs, model.SeatRef{Row: seat.Row, Column: seat.Column})
	}
	return s.bridge.LockSeats(ctx, eventID, refs)
}

func failed(msg string) model.LockResult {
	return model.LockResult{
		OK:          false,
		Message:     msg,
		Locked:      []model.SeatRef{},
		Unavailable: []model.SeatRef{},
	}
}
