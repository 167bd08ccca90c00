// Package seatcache reads and writes the shared seat-lock cache that
// mirrors the registrar's state.  One Redis string per event, keyed
// "evento_{id}", holding JSON like:
//
//	{"eventoId": 4, "asientos": [
//	  {"fila": 2, "columna": 3, "estado": "Bloqueado", "expira": "2025-12-15T14:00:00Z"}
//	]}
//
// The cache is written by several parties and the payload shape drifts:
// rows arrive as numbers or strings, the column field is sometimes named
// "numero", seat states are free text, and some writers store a bare
// array instead of the wrapper object.  Parsing is deliberately tolerant
// of all of that, because a malformed entry must degrade to "no data",
// never to a failed seat-map read.
package seatcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/registrar"
)

const keyPrefix = "evento_"

// lockTTL is how long a registrar seat lock is advertised as valid in
// the cache entry.  Matches the registrar's own 5-minute lock window.
const lockTTL = 5 * time.Minute

// ErrMiss reports that the cache has no entry for the event.
var ErrMiss = errors.New("seatcache: no entry")

// KV is the minimal key-value surface the store needs.  Implemented by
// RedisKV in production and by an in-memory map in tests.
type KV interface {
	Get(ctx context.Context, key string) (string, error) // ErrMiss when absent
	Set(ctx context.Context, key, value string) error
}

// RedisKV adapts a go-redis client to the KV interface.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV wraps the given client.  The client must be non-nil; a nil
// Redis connection is handled one level up by not constructing a store.
func NewRedisKV(client *redis.Client) *RedisKV { return &RedisKV{client: client} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Store reads and updates per-event cache entries.
type Store struct {
	kv KV
}

// New constructs a Store over the given key-value backend.
func New(kv KV) *Store { return &Store{kv: kv} }

func key(eventID int64) string { return keyPrefix + strconv.FormatInt(eventID, 10) }

// SeatMap returns the cached seat map for an event.  ErrMiss means the
// cache has no entry; any other error is a cache communication failure.
// A present but unparseable entry is treated like a miss, with a log
// line, so a corrupt payload cannot block reads.
func (s *Store) SeatMap(ctx context.Context, eventID int64) (model.SeatMap, error) {
	data, err := s.kv.Get(ctx, key(eventID))
	if err != nil {
		return model.SeatMap{}, err
	}

	seats, err := parseSeats([]byte(data))
	if err != nil {
		log.Printf("seatcache: unparseable entry for event %d: %v", eventID, err)
		return model.SeatMap{}, ErrMiss
	}
	return model.SeatMap{EventID: eventID, Seats: seats}, nil
}

// MergeLockResult folds a successful lock call into the cache entry.
// Newly locked seats are inserted or overwritten with a fresh 5-minute
// expiry; seats the registrar reported unavailable are recorded as
// occupied only when absent, so they never clobber a live lock.
func (s *Store) MergeLockResult(ctx context.Context, eventID int64, res model.LockResult) error {
	entry, err := s.readEntry(ctx, eventID)
	if err != nil {
		return err
	}

	expiry := time.Now().UTC().Add(lockTTL).Format(time.RFC3339)
	for _, seat := range res.Locked {
		e := entry.upsert(seat)
		e.Estado = "Bloqueado"
		e.Expira = expiry
	}
	for _, seat := range res.Unavailable {
		if entry.find(seat) != nil {
			continue
		}
		e := entry.upsert(seat)
		e.Estado = "Ocupado"
	}

	buf, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key(eventID), string(buf))
}

// cacheEntry is the canonical shape this service writes back.  Reads
// accept looser forms; see parseSeats.
type cacheEntry struct {
	EventID int64        `json:"eventoId"`
	Seats   []*cacheSeat `json:"asientos"`
}

type cacheSeat struct {
	Fila    int    `json:"fila"`
	Columna int    `json:"columna"`
	Estado  string `json:"estado"`
	Expira  string `json:"expira,omitempty"`
}

func (e *cacheEntry) find(ref model.SeatRef) *cacheSeat {
	for _, s := range e.Seats {
		if s.Fila == ref.Row && s.Columna == ref.Column {
			return s
		}
	}
	return nil
}

func (e *cacheEntry) upsert(ref model.SeatRef) *cacheSeat {
	if s := e.find(ref); s != nil {
		return s
	}
	s := &cacheSeat{Fila: ref.Row, Columna: ref.Column}
	e.Seats = append(e.Seats, s)
	return s
}

func (s *Store) readEntry(ctx context.Context, eventID int64) (*cacheEntry, error) {
	entry := &cacheEntry{EventID: eventID, Seats: []*cacheSeat{}}
	data, err := s.kv.Get(ctx, key(eventID))
	if errors.Is(err, ErrMiss) {
		return entry, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), entry); err != nil {
		// Start over rather than fail the write; the merge below
		// re-seeds the entry with the seats we know about.
		log.Printf("seatcache: resetting unparseable entry for event %d: %v", eventID, err)
		return &cacheEntry{EventID: eventID, Seats: []*cacheSeat{}}, nil
	}
	if entry.Seats == nil {
		entry.Seats = []*cacheSeat{}
	}
	return entry, nil
}

// parseSeats extracts seat entries from a cache payload that is either
// the wrapper object or a bare array of seats.
func parseSeats(data []byte) ([]model.Seat, error) {
	var wrapper struct {
		Asientos []json.RawMessage `json:"asientos"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Asientos != nil {
		return decodeSeatList(wrapper.Asientos)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		return decodeSeatList(list)
	}
	return nil, fmt.Errorf("neither seat object nor seat array")
}

func decodeSeatList(raws []json.RawMessage) ([]model.Seat, error) {
	seats := make([]model.Seat, 0, len(raws))
	for _, raw := range raws {
		seat, ok := decodeSeat(raw)
		if !ok {
			continue // skip malformed entries, keep the rest
		}
		seats = append(seats, seat)
	}
	return seats, nil
}

// decodeSeat handles the field drift of individual entries: fila as
// number or string, columna aliased as numero, estado in the registrar's
// vocabulary, expira optional.
func decodeSeat(raw json.RawMessage) (model.Seat, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Seat{}, false
	}

	row, ok := intField(fields, "fila")
	if !ok {
		return model.Seat{}, false
	}
	col, ok := intField(fields, "columna")
	if !ok {
		if col, ok = intField(fields, "numero"); !ok {
			return model.Seat{}, false
		}
	}

	var estado string
	_ = json.Unmarshal(fields["estado"], &estado)

	seat := model.Seat{
		Row:    row,
		Column: col,
		State:  registrar.NormalizeSeatState(estado),
	}
	var expira string
	if json.Unmarshal(fields["expira"], &expira) == nil && expira != "" {
		if t, err := time.Parse(time.RFC3339, expira); err == nil {
			seat.ExpiresAt = &t
		}
	}
	return seat, true
}

func intField(fields map[string]json.RawMessage, name string) (int, bool) {
	raw, present := fields[name]
	if !present {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}
