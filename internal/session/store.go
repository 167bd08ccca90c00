// Package session holds each user's in-progress seat selection.  The
// store is purely in-memory and process-wide: selections are throwaway
// intent, recreated by the client in seconds, so they are not worth a
// database round-trip.  Entries expire after 30 minutes of inactivity,
// enforced lazily on every read and proactively by a periodic sweep so
// memory cannot grow unbounded between reads.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	// MaxSeats is the most seats a single selection may hold.
	MaxSeats = 4
	// TTL is the inactivity window after which a selection expires.
	TTL = 30 * time.Minute
	// SweepInterval is how often the background sweep runs.
	SweepInterval = 5 * time.Minute
)

// ErrTooManySeats rejects selections above MaxSeats.  The prior
// selection is left untouched.
var ErrTooManySeats = fmt.Errorf("no more than %d seats may be selected", MaxSeats)

// ErrNoSelection reports an operation that needs an existing selection
// when the user has none (or it expired).
var ErrNoSelection = errors.New("no active selection for user")

// SelectedSeat is one seat in a user's selection, optionally carrying
// the occupant it is being bought for.
type SelectedSeat struct {
	Row       int    `json:"fila"`
	Column    int    `json:"numero"`
	FirstName string `json:"nombrePersona,omitempty"`
	LastName  string `json:"apellidoPersona,omitempty"`
}

// Key returns the "row-column" form used to match seats across calls.
func (s SelectedSeat) Key() string { return fmt.Sprintf("%d-%d", s.Row, s.Column) }

// Selection is one user's in-progress choice: the event they are buying
// for and the seats picked so far.  LastActivity drives expiry.
type Selection struct {
	EventID      *int64         `json:"eventoId"`
	Seats        []SelectedSeat `json:"asientos"`
	LastActivity time.Time      `json:"ultimaActualizacion"`
}

func (s *Selection) clone() *Selection {
	cp := *s
	cp.Seats = append([]SelectedSeat(nil), s.Seats...)
	return &cp
}

// Store is the process-wide selection map, keyed by user login.  It is
// created once at startup and passed by reference; there is no package
// global.  Individual operations are safe for concurrent use, but a
// read-modify-write pair (e.g. MergeNames) is not atomic against a
// concurrent Clear for the same user.  Selections carry single-user
// intent, so that race is accepted and not locked away.
type Store struct {
	mu   sync.RWMutex
	byID map[string]*Selection
	now  func() time.Time // injectable clock for expiry tests
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*Selection), now: time.Now}
}

// Get returns a copy of the user's selection, or ok=false when there is
// none.  A selection older than TTL is deleted on the spot and reported
// as absent; expiry wins over whatever value was stored.
func (s *Store) Get(userID string) (*Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.byID[userID]
	if !ok {
		return nil, false
	}
	if s.now().Sub(sel.LastActivity) > TTL {
		delete(s.byID, userID)
		return nil, false
	}
	return sel.clone(), true
}

// Put stores the user's whole selection, stamping LastActivity.  Fails
// with ErrTooManySeats when the selection exceeds MaxSeats, leaving any
// prior selection unchanged.
func (s *Store) Put(userID string, sel Selection) error {
	if len(sel.Seats) > MaxSeats {
		return ErrTooManySeats
	}
	sel.LastActivity = s.now()
	s.mu.Lock()
	s.byID[userID] = sel.clone()
	s.mu.Unlock()
	return nil
}

// SetEvent records the event the user is selecting for, creating the
// selection if needed.  Changing events keeps the chosen seats; the
// client resets them explicitly when it wants a fresh pick.
func (s *Store) SetEvent(userID string, eventID int64) {
	sel, ok := s.Get(userID)
	if !ok {
		sel = &Selection{}
	}
	sel.EventID = &eventID
	_ = s.Put(userID, *sel) // seat count unchanged, cannot overflow
}

// SetSeats replaces the user's chosen seats wholesale, with the same
// MaxSeats check as Put.
func (s *Store) SetSeats(userID string, seats []SelectedSeat) error {
	if len(seats) > MaxSeats {
		return ErrTooManySeats
	}
	sel, ok := s.Get(userID)
	if !ok {
		sel = &Selection{}
	}
	sel.Seats = append([]SelectedSeat(nil), seats...)
	return s.Put(userID, *sel)
}

// MergeNames fills occupant names into already-selected seats, matched
// by "row-column" key.  Seats without a matching entry keep their names.
// Fails with ErrNoSelection when the user has no active selection.
func (s *Store) MergeNames(userID string, namesByKey map[string]SelectedSeat) error {
	sel, ok := s.Get(userID)
	if !ok {
		return ErrNoSelection
	}
	for i, seat := range sel.Seats {
		if upd, ok := namesByKey[seat.Key()]; ok {
			sel.Seats[i].FirstName = upd.FirstName
			sel.Seats[i].LastName = upd.LastName
		}
	}
	return s.Put(userID, *sel)
}

// Clear removes the user's selection.  Called on sale completion and
// when a lock attempt leaves the selection unusable.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	delete(s.byID, userID)
	s.mu.Unlock()
}

// Sweep deletes every expired selection and returns how many went.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sel := range s.byID {
		if now.Sub(sel.LastActivity) > TTL {
			delete(s.byID, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every SweepInterval until ctx is cancelled.
// Run it in its own goroutine.
func (s *Store) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("session: swept %d expired selections", n)
			}
		}
	}
}

// Len reports the number of live selections, expired or not.  Used by
// tests and diagnostics only.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
