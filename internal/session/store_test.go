package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndGetRoundTrip(t *testing.T) {
	s := NewStore()
	err := s.Put("ana", Selection{Seats: []SelectedSeat{{Row: 1, Column: 2}}})
	require.NoError(t, err)

	sel, ok := s.Get("ana")
	require.True(t, ok)
	require.Len(t, sel.Seats, 1)
	assert.Equal(t, 1, sel.Seats[0].Row)
	assert.Equal(t, 2, sel.Seats[0].Column)
	assert.False(t, sel.LastActivity.IsZero())
}

func TestGetReturnsACopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put("ana", Selection{Seats: []SelectedSeat{{Row: 1, Column: 1}}}))

	sel, ok := s.Get("ana")
	require.True(t, ok)
	sel.Seats[0].Row = 99

	again, ok := s.Get("ana")
	require.True(t, ok)
	assert.Equal(t, 1, again.Seats[0].Row)
}

func TestPutRejectsTooManySeats(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put("ana", Selection{Seats: []SelectedSeat{{Row: 1, Column: 1}}}))

	five := make([]SelectedSeat, MaxSeats+1)
	for i := range five {
		five[i] = SelectedSeat{Row: 1, Column: i + 1}
	}
	err := s.Put("ana", Selection{Seats: five})
	assert.ErrorIs(t, err, ErrTooManySeats)

	// The earlier selection must be untouched.
	sel, ok := s.Get("ana")
	require.True(t, ok)
	assert.Len(t, sel.Seats, 1)
}

func TestGetExpiresStaleSelection(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Put("ana", Selection{Seats: []SelectedSeat{{Row: 1, Column: 1}}}))

	s.now = func() time.Time { return now.Add(TTL + time.Minute) }
	_, ok := s.Get("ana")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len(), "expired entry should be deleted on read")
}

func TestActivityRefreshesTTL(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Put("ana", Selection{}))

	// Touch the selection just before it would expire.
	s.now = func() time.Time { return now.Add(TTL - time.Minute) }
	s.SetEvent("ana", 7)

	// The old deadline has passed, the refreshed one has not.
	s.now = func() time.Time { return now.Add(TTL + time.Minute) }
	sel, ok := s.Get("ana")
	require.True(t, ok)
	require.NotNil(t, sel.EventID)
	assert.Equal(t, int64(7), *sel.EventID)
}

func TestSetEventKeepsSeats(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetSeats("ana", []SelectedSeat{{Row: 2, Column: 3}}))
	s.SetEvent("ana", 42)

	sel, ok := s.Get("ana")
	require.True(t, ok)
	require.NotNil(t, sel.EventID)
	assert.Equal(t, int64(42), *sel.EventID)
	assert.Len(t, sel.Seats, 1)
}

func TestMergeNames(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetSeats("ana", []SelectedSeat{
		{Row: 1, Column: 1},
		{Row: 1, Column: 2},
	}))

	err := s.MergeNames("ana", map[string]SelectedSeat{
		"1-2": {Row: 1, Column: 2, FirstName: "Juan", LastName: "Pérez"},
	})
	require.NoError(t, err)

	sel, ok := s.Get("ana")
	require.True(t, ok)
	assert.Empty(t, sel.Seats[0].FirstName, "unmatched seat keeps its names")
	assert.Equal(t, "Juan", sel.Seats[1].FirstName)
	assert.Equal(t, "Pérez", sel.Seats[1].LastName)
}

func TestMergeNamesWithoutSelection(t *testing.T) {
	s := NewStore()
	err := s.MergeNames("nadie", map[string]SelectedSeat{})
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put("ana", Selection{}))
	s.Clear("ana")
	s.Clear("ana")
	_, ok := s.Get("ana")
	assert.False(t, ok)
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Put("vieja", Selection{}))

	s.now = func() time.Time { return now.Add(TTL - time.Minute) }
	require.NoError(t, s.Put("fresca", Selection{}))

	s.now = func() time.Time { return now.Add(TTL + time.Minute) }
	removed := s.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("fresca")
	assert.True(t, ok)
}
