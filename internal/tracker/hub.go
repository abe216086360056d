// Package tracker lets customers observe an order's status: point-in-time
// snapshots and live subscriptions fed by the store's status notifications.
package tracker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/najugourmet/storefront/internal/domain/order"
)

// Update is one status change pushed to subscribers.
type Update struct {
	OrderID string                                  `json:"order_id"`
	Status  order.Status                            `json:"status"`
	Steps   [order.ProgressionSteps]order.StepState `json:"steps"`
	At      time.Time                               `json:"at"`
}

// Hub fans status updates out to per-order subscribers. Publishing to an
// order nobody watches is a no-op.
type Hub struct {
	pubsub *gochannel.GoChannel
}

// NewHub creates a Hub backed by an in-process pub/sub.
func NewHub(lg *zap.Logger) *Hub {
	return &Hub{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, zapLogger{lg: lg}),
	}
}

func topicFor(orderID string) string {
	return "orders.status." + orderID
}

// Publish pushes an update to the order's subscribers.
func (h *Hub) Publish(u Update) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return errors.Wrap(err, "marshal update")
	}
	msg := message.NewMessage(uuid.New().String(), payload)
	return h.pubsub.Publish(topicFor(u.OrderID), msg)
}

// Subscription is a live feed of one order's status changes. Close it when
// done; closing stops the feed and releases the underlying subscription.
type Subscription struct {
	updates <-chan Update
	cancel  context.CancelFunc
}

// Updates returns the feed channel. It is closed when the subscription ends.
func (s *Subscription) Updates() <-chan Update {
	return s.updates
}

// Close cancels the subscription.
func (s *Subscription) Close() {
	s.cancel()
}

// Subscribe opens a live feed for the order. The feed ends when ctx is
// cancelled or Close is called.
func (h *Hub) Subscribe(ctx context.Context, orderID string) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	messages, err := h.pubsub.Subscribe(ctx, topicFor(orderID))
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "subscribe")
	}

	updates := make(chan Update)
	go func() {
		defer close(updates)
		for msg := range messages {
			var u Update
			if err := json.Unmarshal(msg.Payload, &u); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
			select {
			case updates <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Subscription{updates: updates, cancel: cancel}, nil
}

// Close shuts the hub down, ending every open subscription.
func (h *Hub) Close() error {
	return h.pubsub.Close()
}

// zapLogger adapts zap to the pub/sub's logging interface.
type zapLogger struct {
	lg *zap.Logger
}

func (z zapLogger) fields(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (z zapLogger) Error(msg string, err error, fields watermill.LogFields) {
	z.lg.Error(msg, append(z.fields(fields), zap.Error(err))...)
}

func (z zapLogger) Info(msg string, fields watermill.LogFields) {
	z.lg.Info(msg, z.fields(fields)...)
}

func (z zapLogger) Debug(msg string, fields watermill.LogFields) {
	z.lg.Debug(msg, z.fields(fields)...)
}

func (z zapLogger) Trace(msg string, fields watermill.LogFields) {
	z.lg.Debug(msg, z.fields(fields)...)
}

func (z zapLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return zapLogger{lg: z.lg.With(z.fields(fields)...)}
}
