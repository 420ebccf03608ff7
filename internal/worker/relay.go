package worker

import (
	"context"
	"log"
	"time"

	"github.com/axisbulk/axis/internal/repository"
)

// Publisher is the outbound side of the relay (satisfied by kafka.Producer).
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// OutboxRelay polls the outbox table and publishes pending events to Kafka.
// Publishing is at-least-once: a crash between publish and mark re-publishes
// the event, which is safe because campaign dispatch is claim-guarded.
type OutboxRelay struct {
	Outbox   repository.OutboxRepository
	Producer Publisher

	Interval  time.Duration // poll interval
	BatchSize int           // rows per poll
}

func NewOutboxRelay(outbox repository.OutboxRepository, producer Publisher) *OutboxRelay {
	return &OutboxRelay{
		Outbox:    outbox,
		Producer:  producer,
		Interval:  500 * time.Millisecond,
		BatchSize: 100,
	}
}

// Run polls until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) error {
	if r.Interval <= 0 {
		r.Interval = 500 * time.Millisecond
	}
	if r.BatchSize <= 0 {
		r.BatchSize = 100
	}

	tick := time.NewTicker(r.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if err := r.relayOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Printf("[relay] %v", err)
			}
		}
	}
}

func (r *OutboxRelay) relayOnce(ctx context.Context) error {
	events, err := r.Outbox.FetchUndispatched(ctx, r.BatchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	done := make([]int64, 0, len(events))
	for _, ev := range events {
		if err := r.Producer.Publish(ctx, ev.AggregateID, ev.Payload); err != nil {
			// stop the batch; unpublished rows stay pending for the next tick
			log.Printf("[relay] publish id=%d aggregate=%s err=%v", ev.ID, ev.AggregateID, err)
			break
		}
		done = append(done, ev.ID)
	}

	if len(done) == 0 {
		return nil
	}
	return r.Outbox.MarkDispatched(ctx, done)
}
