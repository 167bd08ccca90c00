package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/repository"
)

type fakeCache struct {
	maps   map[int64]model.SeatMap
	getErr error
	merged []model.LockResult
	setErr error
}

func (f *fakeCache) SeatMap(_ context.Context, eventID int64) (model.SeatMap, error) {
	if f.getErr != nil {
		return model.SeatMap{}, f.getErr
	}
	m, ok := f.maps[eventID]
	if !ok {
		return model.SeatMap{}, errors.New("seatcache: no entry")
	}
	return m, nil
}

func (f *fakeCache) MergeLockResult(_ context.Context, _ int64, res model.LockResult) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.merged = append(f.merged, res)
	return nil
}

type fakeLocker struct {
	res model.LockResult
	err error
}

func (f *fakeLocker) LockSeats(_ context.Context, _ int64, _ []model.SeatRef) (model.LockResult, error) {
	return f.res, f.err
}

type fakeEvents struct {
	events map[int64]*model.Event
}

func (f *fakeEvents) ByRegistrarID(_ context.Context, id int64) (*model.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return e, nil
}

func TestSeatMapFromCache(t *testing.T) {
	cached := model.SeatMap{EventID: 4, Seats: []model.Seat{{Row: 1, Column: 1, State: model.SeatLocked}}}
	b := New(&fakeCache{maps: map[int64]model.SeatMap{4: cached}}, &fakeLocker{}, &fakeEvents{})

	m := b.SeatMap(context.Background(), 4)
	assert.Equal(t, cached, m)
}

func TestSeatMapSynthesizedOnMiss(t *testing.T) {
	events := &fakeEvents{events: map[int64]*model.Event{
		4: {RegistrarID: 4, SeatRows: 2, SeatCols: 3},
	}}
	b := New(&fakeCache{maps: map[int64]model.SeatMap{}}, &fakeLocker{}, events)

	m := b.SeatMap(context.Background(), 4)
	require.Len(t, m.Seats, 6)
	for _, seat := range m.Seats {
		assert.Equal(t, model.SeatFree, seat.State)
	}
	assert.Equal(t, 1, m.Seats[0].Row)
	assert.Equal(t, 1, m.Seats[0].Column)
	assert.Equal(t, 2, m.Seats[5].Row)
	assert.Equal(t, 3, m.Seats[5].Column)
}

func TestSeatMapWithoutCacheOrDimensions(t *testing.T) {
	b := New(nil, &fakeLocker{}, &fakeEvents{})
	m := b.SeatMap(context.Background(), 99)
	assert.Equal(t, int64(99), m.EventID)
	assert.Empty(t, m.Seats)
}

func TestLockSeatsMirrorsSuccessIntoCache(t *testing.T) {
	cache := &fakeCache{maps: map[int64]model.SeatMap{}}
	locker := &fakeLocker{res: model.LockResult{
		OK:     true,
		Locked: []model.SeatRef{{Row: 1, Column: 1}},
	}}
	b := New(cache, locker, &fakeEvents{})

	res := b.LockSeats(context.Background(), 4, []model.SeatRef{{Row: 1, Column: 1}})
	assert.True(t, res.OK)
	require.Len(t, cache.merged, 1)
	assert.Equal(t, locker.res, cache.merged[0])
}

func TestLockSeatsRejectionNotMirrored(t *testing.T) {
	cache := &fakeCache{maps: map[int64]model.SeatMap{}}
	locker := &fakeLocker{res: model.LockResult{OK: false, Message: "ocupados"}}
	b := New(cache, locker, &fakeEvents{})

	res := b.LockSeats(context.Background(), 4, []model.SeatRef{{Row: 1, Column: 1}})
	assert.False(t, res.OK)
	assert.Empty(t, cache.merged)
}

func TestLockSeatsAbsorbsCommunicationFailure(t *testing.T) {
	b := New(nil, &fakeLocker{err: errors.New("dial tcp: refused")}, &fakeEvents{})

	res := b.LockSeats(context.Background(), 4, []model.SeatRef{{Row: 1, Column: 1}})
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "could not reach the booking service")
	assert.NotNil(t, res.Locked)
	assert.NotNil(t, res.Unavailable)
}

func TestLockSeatsCacheFailureDoesNotChangeVerdict(t *testing.T) {
	cache := &fakeCache{setErr: errors.New("redis down")}
	locker := &fakeLocker{res: model.LockResult{OK: true}}
	b := New(cache, locker, &fakeEvents{})

	res := b.LockSeats(context.Background(), 4, nil)
	assert.True(t, res.OK, "a stale mirror must not fail the lock")
}
