package tracker

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/najugourmet/storefront/internal/domain/order"
)

// statusChannel is the NOTIFY channel the store's status trigger fires on.
// The notification payload is the order id.
const statusChannel = "order_status"

// reconnectDelay spaces out reconnect attempts after a lost listen connection.
const reconnectDelay = 5 * time.Second

// Listener bridges the store's status notifications into the hub. It holds a
// dedicated connection on LISTEN and republishes each notification as a full
// status update.
type Listener struct {
	pool   *pgxpool.Pool
	orders order.Repository
	hub    *Hub
}

// NewListener creates a Listener.
func NewListener(pool *pgxpool.Pool, orders order.Repository, hub *Hub) *Listener {
	return &Listener{pool: pool, orders: orders, hub: hub}
}

// Run listens for status notifications until ctx is cancelled. A lost
// connection is re-established after a delay; notifications fired while
// disconnected are dropped, which is fine because subscribers re-read the
// snapshot on reconnect.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			zctx.From(ctx).Warn("status listener disconnected",
				zap.Error(err),
				zap.Duration("retry_in", reconnectDelay),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire listen connection")
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+statusChannel); err != nil {
		return errors.Wrap(err, "listen")
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return errors.Wrap(err, "wait for notification")
		}
		l.dispatch(ctx, notification.Payload)
	}
}

// dispatch resolves the notified order and publishes its current state.
// Failures are logged, not fatal: one bad notification must not take the
// listener down.
func (l *Listener) dispatch(ctx context.Context, orderID string) {
	o, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		zctx.From(ctx).Error("resolve notified order",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}
	u := Update{
		OrderID: o.ID,
		Status:  o.Status,
		Steps:   o.Status.Steps(),
		At:      time.Now().UTC(),
	}
	if err := l.hub.Publish(u); err != nil {
		zctx.From(ctx).Error("publish status update",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}
