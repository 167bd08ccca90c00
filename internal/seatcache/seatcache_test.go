package seatcache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

// fakeKV is an in-memory KV backend for tests.
type fakeKV struct {
	data map[string]string
	err  error
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]string{}} }

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	return nil
}

func TestSeatMapMiss(t *testing.T) {
	s := New(newFakeKV())
	_, err := s.SeatMap(context.Background(), 4)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSeatMapParsesCanonicalEntry(t *testing.T) {
	kv := newFakeKV()
	kv.data["evento_4"] = `{"eventoId":4,"asientos":[
		{"fila":1,"columna":2,"estado":"Libre"},
		{"fila":1,"columna":3,"estado":"Vendido"},
		{"fila":2,"columna":1,"estado":"BLOQUEO EXITOSO","expira":"2026-01-01T10:00:00Z"}
	]}`

	m, err := New(kv).SeatMap(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), m.EventID)
	require.Len(t, m.Seats, 3)
	assert.Equal(t, model.SeatFree, m.Seats[0].State)
	assert.Equal(t, model.SeatOccupied, m.Seats[1].State)
	assert.Equal(t, model.SeatLocked, m.Seats[2].State)
	require.NotNil(t, m.Seats[2].ExpiresAt)
	assert.Equal(t, 2026, m.Seats[2].ExpiresAt.Year())
}

func TestSeatMapToleratesFieldDrift(t *testing.T) {
	kv := newFakeKV()
	// Rows as strings, "numero" instead of "columna", one garbage entry,
	// and the whole thing as a bare array.
	kv.data["evento_9"] = `[
		{"fila":"3","numero":"7","estado":"Ocupado"},
		{"sinCampos":true},
		{"fila":1,"columna":1}
	]`

	m, err := New(kv).SeatMap(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, m.Seats, 2, "garbage entries are skipped, not fatal")
	assert.Equal(t, 3, m.Seats[0].Row)
	assert.Equal(t, 7, m.Seats[0].Column)
	assert.Equal(t, model.SeatOccupied, m.Seats[0].State)
	assert.Equal(t, model.SeatFree, m.Seats[1].State, "missing estado reads as free")
}

func TestSeatMapUnparseableEntryDegradesToMiss(t *testing.T) {
	kv := newFakeKV()
	kv.data["evento_4"] = `not json at all`
	_, err := New(kv).SeatMap(context.Background(), 4)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSeatMapPropagatesBackendFailure(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	_, err := New(kv).SeatMap(context.Background(), 4)
	assert.False(t, errors.Is(err, ErrMiss))
	assert.Error(t, err)
}

func TestMergeLockResultCreatesEntry(t *testing.T) {
	kv := newFakeKV()
	s := New(kv)

	err := s.MergeLockResult(context.Background(), 4, model.LockResult{
		OK:     true,
		Locked: []model.SeatRef{{Row: 2, Column: 3}},
	})
	require.NoError(t, err)

	var entry cacheEntry
	require.NoError(t, json.Unmarshal([]byte(kv.data["evento_4"]), &entry))
	assert.Equal(t, int64(4), entry.EventID)
	require.Len(t, entry.Seats, 1)
	assert.Equal(t, "Bloqueado", entry.Seats[0].Estado)

	exp, err := time.Parse(time.RFC3339, entry.Seats[0].Expira)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(lockTTL), exp, time.Minute)
}

func TestMergeLockResultRefreshesExistingLock(t *testing.T) {
	kv := newFakeKV()
	kv.data["evento_4"] = `{"eventoId":4,"asientos":[
		{"fila":2,"columna":3,"estado":"Libre"}
	]}`
	s := New(kv)

	err := s.MergeLockResult(context.Background(), 4, model.LockResult{
		OK:     true,
		Locked: []model.SeatRef{{Row: 2, Column: 3}},
	})
	require.NoError(t, err)

	var entry cacheEntry
	require.NoError(t, json.Unmarshal([]byte(kv.data["evento_4"]), &entry))
	require.Len(t, entry.Seats, 1, "existing seat is overwritten, not duplicated")
	assert.Equal(t, "Bloqueado", entry.Seats[0].Estado)
	assert.NotEmpty(t, entry.Seats[0].Expira)
}

func TestMergeLockResultNeverClobbersLockWithUnavailable(t *testing.T) {
	kv := newFakeKV()
	kv.data["evento_4"] = `{"eventoId":4,"asientos":[
		{"fila":1,"columna":1,"estado":"Bloqueado","expira":"2026-01-01T10:00:00Z"}
	]}`
	s := New(kv)

	err := s.MergeLockResult(context.Background(), 4, model.LockResult{
		OK:          true,
		Unavailable: []model.SeatRef{{Row: 1, Column: 1}, {Row: 1, Column: 2}},
	})
	require.NoError(t, err)

	var entry cacheEntry
	require.NoError(t, json.Unmarshal([]byte(kv.data["evento_4"]), &entry))
	require.Len(t, entry.Seats, 2)
	assert.Equal(t, "Bloqueado", entry.Seats[0].Estado, "live lock survives")
	assert.Equal(t, "Ocupado", entry.Seats[1].Estado, "new unavailable seat recorded")
}

func TestMergeLockResultResetsCorruptEntry(t *testing.T) {
	kv := newFakeKV()
	kv.data["evento_4"] = `{{{`
	s := New(kv)

	err := s.MergeLockResult(context.Background(), 4, model.LockResult{
		OK:     true,
		Locked: []model.SeatRef{{Row: 1, Column: 1}},
	})
	require.NoError(t, err)

	var entry cacheEntry
	require.NoError(t, json.Unmarshal([]byte(kv.data["evento_4"]), &entry))
	require.Len(t, entry.Seats, 1)
}
