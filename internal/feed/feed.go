// Package feed publishes order lifecycle events to an external stream.
// The feed is strictly one-way and fire-and-forget: it observes the relay,
// it never feeds back into relay state or fan-out.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/order"
)

const (
	TypeOrderCreated  = "order.created"
	TypeOrderUpdated  = "order.updated"
	TypeOrderAssigned = "order.assigned"
	TypeOrderDeleted  = "order.deleted"
)

type Event struct {
	Type    string       `json:"type"`
	OrderID string       `json:"orderId"`
	Order   *order.Order `json:"order,omitempty"`
	At      time.Time    `json:"at"`
}

// Feed decouples the dispatcher from the producer: Record enqueues and
// returns immediately, a single goroutine drains the queue. A full queue
// drops the event rather than stall event processing.
type Feed struct {
	producer Producer
	logger   *zap.Logger

	events   chan Event
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func New(producer Producer, logger *zap.Logger) *Feed {
	return &Feed{
		producer: producer,
		logger:   logger,
		events:   make(chan Event, 256),
	}
}

func (f *Feed) Run(ctx context.Context) {
	f.wg.Add(1)
	defer f.wg.Done()

	for {
		select {
		case ev := <-f.events:
			f.publish(ctx, ev)
		case <-ctx.Done():
			// Drain what is already queued, then stop.
			for {
				select {
				case ev := <-f.events:
					f.publish(context.Background(), ev)
				default:
					return
				}
			}
		}
	}
}

func (f *Feed) Record(eventType string, orderID string, o *order.Order) {
	ev := Event{
		Type:    eventType,
		OrderID: orderID,
		Order:   o,
		At:      time.Now().UTC(),
	}

	select {
	case f.events <- ev:
	default:
		f.logger.Warn("feed queue full, dropping event",
			zap.String("type", eventType),
			zap.String("order_id", orderID),
		)
	}
}

func (f *Feed) publish(ctx context.Context, ev Event) {
	value, err := json.Marshal(ev)
	if err != nil {
		f.logger.Error("marshal feed event", zap.Error(err))
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := f.producer.Publish(publishCtx, []byte(ev.OrderID), value); err != nil {
		f.logger.Error("publish feed event",
			zap.String("type", ev.Type),
			zap.String("order_id", ev.OrderID),
			zap.Error(err),
		)
	}
}

// Shutdown waits for the run loop to finish and closes the producer.
func (f *Feed) Shutdown() {
	f.stopOnce.Do(func() {
		f.wg.Wait()
		if err := f.producer.Close(); err != nil {
			f.logger.Error("close feed producer", zap.Error(err))
		}
	})
}
