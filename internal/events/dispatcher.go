package events

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sociogram/backend/internal/repositories"
)

// Publisher delivers a payload to every subscriber of a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Waker lets interaction handlers nudge the dispatcher right after a commit
// instead of waiting for the next poll tick.
type Waker interface {
	Wake()
}

const (
	defaultInterval    = 250 * time.Millisecond
	defaultBatchSize   = 64
	defaultMaxAttempts = 5
)

// Dispatcher drains the outbox and publishes staged events. Delivery to
// subscribers stays at-most-once; the outbox only guarantees that a commit
// followed by a crash cannot silently drop the publish.
type Dispatcher struct {
	store       repositories.Store
	pub         Publisher
	interval    time.Duration
	batchSize   int
	maxAttempts int
	wake        chan struct{}
}

// NewDispatcher creates a Dispatcher with default polling parameters
func NewDispatcher(store repositories.Store, pub Publisher) *Dispatcher {
	return &Dispatcher{
		store:       store,
		pub:         pub,
		interval:    defaultInterval,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		wake:        make(chan struct{}, 1),
	}
}

// Wake requests an immediate drain. Safe to call from any goroutine.
func (d *Dispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run polls the outbox until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	logrus.Info("Outbox dispatcher started.")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Outbox dispatcher stopped.")
			return
		case <-ticker.C:
		case <-d.wake:
		}
		d.drain(ctx)
	}
}

// drain publishes pending events until the outbox is empty
func (d *Dispatcher) drain(ctx context.Context) {
	for {
		pending, err := d.store.Outbox().FetchPending(ctx, d.batchSize, d.maxAttempts)
		if err != nil {
			logrus.Warnf("Failed to fetch pending events: %v", err)
			return
		}
		if len(pending) == 0 {
			return
		}
		for _, evt := range pending {
			if err := d.pub.Publish(evt.Topic, []byte(evt.Payload)); err != nil {
				if evt.Attempts+1 >= d.maxAttempts {
					logrus.Warnf("Giving up on event %d for topic %s after %d attempts: %v", evt.ID, evt.Topic, evt.Attempts+1, err)
				}
				if err := d.store.Outbox().RecordFailure(ctx, evt.ID); err != nil {
					logrus.Warnf("Failed to record delivery failure for event %d: %v", evt.ID, err)
				}
				continue
			}
			if err := d.store.Outbox().MarkPublished(ctx, evt.ID); err != nil {
				logrus.Warnf("Failed to mark event %d as published: %v", evt.ID, err)
			}
		}
		if len(pending) < d.batchSize {
			return
		}
	}
}
