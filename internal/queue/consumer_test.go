package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/catalog"
)

type fakeResyncer struct {
	calls int
	err   error
}

func (f *fakeResyncer) Resync(_ context.Context) (catalog.Report, error) {
	f.calls++
	return catalog.Report{}, f.err
}

func TestHandleTriggersResync(t *testing.T) {
	r := &fakeResyncer{}
	c := NewConsumer("amqp://unused", r)

	c.handle(context.Background(), []byte(`{"eventoId":4,"tipoCambio":"UPDATE"}`))
	assert.Equal(t, 1, r.calls)
}

func TestHandleUnparseableMessageStillResyncs(t *testing.T) {
	// At-least-once delivery plus full-snapshot resync means even a
	// garbled notification is a usable "something changed" signal.
	r := &fakeResyncer{}
	c := NewConsumer("amqp://unused", r)

	c.handle(context.Background(), []byte(`???`))
	assert.Equal(t, 1, r.calls)
}

func TestHandleSwallowsResyncFailure(t *testing.T) {
	r := &fakeResyncer{err: errors.New("registrar down")}
	c := NewConsumer("amqp://unused", r)

	c.handle(context.Background(), []byte(`{"eventoId":4,"tipoCambio":"DELETE"}`))
	assert.Equal(t, 1, r.calls)
}

func TestRunStopsImmediatelyOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeResyncer{}
	NewConsumer("amqp://127.0.0.1:1", r).Run(ctx)
	assert.Zero(t, r.calls)
}
