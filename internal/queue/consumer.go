// Package queue contains the background consumer that listens for
// catalog change notifications and triggers a full resync per message.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/catalog"
)

const catalogQueueName = "eventos.cambios"

// Resyncer refreshes the local catalog mirror.  Implemented by
// catalog.Service; the report is only logged here.
type Resyncer interface {
	Resync(ctx context.Context) (catalog.Report, error)
}

// Consumer relays broker change notifications into catalog resyncs.
type Consumer struct {
	url     string
	resync  Resyncer
	backoff time.Duration
}

// NewConsumer builds a consumer for the given broker URL.
func NewConsumer(url string, resync Resyncer) *Consumer {
	return &Consumer{url: url, resync: resync, backoff: time.Second}
}

// Run connects to the broker, declares the durable catalog queue, and
// consumes until ctx is cancelled.  It runs a reconnect loop with
// exponential backoff so a broker restart never takes the service down.
// Run it in its own goroutine.
func (c *Consumer) Run(ctx context.Context) {
	backoff := c.backoff
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			log.Printf("queue: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = c.backoff // reset after successful connect

		if err := c.consumeLoop(ctx, conn); err != nil {
			log.Printf("queue: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(1, 0, false); err != nil {
		log.Printf("queue: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(catalogQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(catalogQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d.Body)
			// Ack regardless of the resync outcome.  Requeueing a
			// message whose resync failed would redeliver it forever;
			// the next notification (or a manual resync) covers the
			// missed change because every resync is a full snapshot.
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) {
	var ev CatalogChangeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		log.Printf("queue: unparseable change notification, resyncing anyway: %v", err)
	} else {
		log.Printf("queue: change %s for event %d, triggering catalog resync", ev.Kind, ev.EventID)
	}
	if _, err := c.resync.Resync(ctx); err != nil {
		log.Printf("queue: catalog resync failed: %v", err)
	}
}

// sleep waits d or until ctx is cancelled, reporting whether to go on.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
