package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

type fakeSource struct {
	sales []*model.Sale
	err   error
	max   int
}

func (f *fakeSource) PendingForRetry(_ context.Context, maxRetries int) ([]*model.Sale, error) {
	f.max = maxRetries
	return f.sales, f.err
}

type fakeRetrier struct {
	seen []int64
	ok   map[int64]bool
}

func (f *fakeRetrier) Retry(_ context.Context, s *model.Sale) bool {
	f.seen = append(f.seen, s.ID)
	return f.ok[s.ID]
}

func TestPassRetriesEverySale(t *testing.T) {
	source := &fakeSource{sales: []*model.Sale{{ID: 1}, {ID: 2}, {ID: 3}}}
	retrier := &fakeRetrier{ok: map[int64]bool{2: true}}
	s := New(source, retrier, 5)

	s.Pass(context.Background())

	assert.Equal(t, []int64{1, 2, 3}, retrier.seen)
	assert.Equal(t, 5, source.max, "retry limit is passed through to the query")
}

func TestPassSurvivesListFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("db down")}
	retrier := &fakeRetrier{}
	New(source, retrier, 5).Pass(context.Background())
	assert.Empty(t, retrier.seen)
}

func TestPassStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{sales: []*model.Sale{{ID: 1}}}
	retrier := &fakeRetrier{}
	New(source, retrier, 5).Pass(ctx)
	assert.Empty(t, retrier.seen)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(&fakeSource{}, &fakeRetrier{}, 5)

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}
