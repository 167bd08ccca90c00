package seats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/session"
)

type fakeBridge struct {
	m      model.SeatMap
	res    model.LockResult
	locked []model.SeatRef
}

func (f *fakeBridge) SeatMap(_ context.Context, _ int64) model.SeatMap { return f.m }

func (f *fakeBridge) LockSeats(_ context.Context, _ int64, seats []model.SeatRef) model.LockResult {
	f.locked = seats
	return f.res
}

type fakeSessions struct {
	sel map[string]*session.Selection
}

func (f *fakeSessions) Get(userID string) (*session.Selection, bool) {
	s, ok := f.sel[userID]
	return s, ok
}

func eventID(id int64) *int64 { return &id }

func TestSeatMapFlagsOwnSeats(t *testing.T) {
	b := &fakeBridge{m: model.SeatMap{EventID: 4, Seats: []model.Seat{
		{Row: 1, Column: 1, State: model.SeatLocked},
		{Row: 1, Column: 2, State: model.SeatFree},
	}}}
	sessions := &fakeSessions{sel: map[string]*session.Selection{
		"ana": {EventID: eventID(4), Seats: []session.SelectedSeat{{Row: 1, Column: 1}}},
	}}

	m := New(b, sessions).SeatMap(context.Background(), 4, "ana")
	assert.True(t, m.Seats[0].SelectedByMe)
	assert.False(t, m.Seats[1].SelectedByMe)
}

func TestSeatMapIgnoresSelectionForOtherEvent(t *testing.T) {
	b := &fakeBridge{m: model.SeatMap{EventID: 4, Seats: []model.Seat{
		{Row: 1, Column: 1, State: model.SeatFree},
	}}}
	sessions := &fakeSessions{sel: map[string]*session.Selection{
		"ana": {EventID: eventID(5), Seats: []session.SelectedSeat{{Row: 1, Column: 1}}},
	}}

	m := New(b, sessions).SeatMap(context.Background(), 4, "ana")
	assert.False(t, m.Seats[0].SelectedByMe)
}

func TestSeatMapWithoutSession(t *testing.T) {
	b := &fakeBridge{m: model.SeatMap{EventID: 4}}
	m := New(b, &fakeSessions{sel: map[string]*session.Selection{}}).SeatMap(context.Background(), 4, "nadie")
	assert.Equal(t, int64(4), m.EventID)
}

func TestLockSelected(t *testing.T) {
	b := &fakeBridge{res: model.LockResult{OK: true}}
	sessions := &fakeSessions{sel: map[string]*session.Selection{
		"ana": {EventID: eventID(4), Seats: []session.SelectedSeat{
			{Row: 1, Column: 1}, {Row: 1, Column: 2},
		}},
	}}

	res := New(b, sessions).LockSelected(context.Background(), 4, "ana")
	assert.True(t, res.OK)
	require.Len(t, b.locked, 2)
	assert.Equal(t, model.SeatRef{Row: 1, Column: 1}, b.locked[0])
}

func TestLockSelectedWithoutSeats(t *testing.T) {
	sessions := &fakeSessions{sel: map[string]*session.Selection{
		"ana": {EventID: eventID(4)},
	}}
	res := New(&fakeBridge{}, sessions).LockSelected(context.Background(), 4, "ana")
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "no seats selected")
}

func TestLockSelectedWrongEvent(t *testing.T) {
	sessions := &fakeSessions{sel: map[string]*session.Selection{
		"ana": {EventID: eventID(5), Seats: []session.SelectedSeat{{Row: 1, Column: 1}}},
	}}
	res := New(&fakeBridge{}, sessions).LockSelected(context.Background(), 4, "ana")
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "different event")
}
