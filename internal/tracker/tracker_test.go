package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/najugourmet/storefront/internal/domain/order"
)

type ordersMock struct {
	byID    map[string]*order.Order
	ids     []string
	getErrs int
}

var _ order.Repository = (*ordersMock)(nil)

func (m *ordersMock) CreateOrder(_ context.Context, _ *order.Order) (string, error) {
	panic("not used")
}

func (m *ordersMock) CreateItems(_ context.Context, _ string, _ []order.Item) error {
	panic("not used")
}

func (m *ordersMock) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		m.getErrs++
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *ordersMock) MarkIncomplete(_ context.Context, _ string) error {
	panic("not used")
}

func (m *ordersMock) IDs(_ context.Context) ([]string, error) {
	return m.ids, nil
}

func newTestTracker(t *testing.T, orders *ordersMock) (*Tracker, *Hub) {
	t.Helper()
	hub := NewHub(zaptest.NewLogger(t))
	t.Cleanup(func() { _ = hub.Close() })
	return New(orders, hub), hub
}

func TestTracker_Get_UnknownIDSkipsStore(t *testing.T) {
	orders := &ordersMock{byID: map[string]*order.Order{}}
	tr, _ := newTestTracker(t, orders)

	_, err := tr.Get(context.Background(), "never-assigned")
	assert.ErrorIs(t, err, order.ErrNotFound)
	assert.Zero(t, orders.getErrs, "unknown ids must not reach the store")
}

func TestTracker_Get_RememberedID(t *testing.T) {
	o := &order.Order{ID: "order-1", Status: order.StatusReady}
	orders := &ordersMock{byID: map[string]*order.Order{"order-1": o}}
	tr, _ := newTestTracker(t, orders)

	tr.Remember("order-1")
	snap, err := tr.Get(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, o, snap.Order)
	assert.Equal(t, order.StatusReady.Steps(), snap.Steps)
}

func TestTracker_Prime(t *testing.T) {
	o := &order.Order{ID: "old-order", Status: order.StatusDelivered}
	orders := &ordersMock{
		byID: map[string]*order.Order{"old-order": o},
		ids:  []string{"old-order"},
	}
	tr, _ := newTestTracker(t, orders)

	require.NoError(t, tr.Prime(context.Background()))
	snap, err := tr.Get(context.Background(), "old-order")
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, snap.Order.Status)
}

func TestTracker_Subscribe_ReceivesUpdates(t *testing.T) {
	o := &order.Order{ID: "order-1", Status: order.StatusPending}
	orders := &ordersMock{byID: map[string]*order.Order{"order-1": o}}
	tr, hub := newTestTracker(t, orders)
	tr.Remember("order-1")

	snap, sub, err := tr.Subscribe(context.Background(), "order-1")
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, order.StatusPending, snap.Order.Status)

	want := Update{
		OrderID: "order-1",
		Status:  order.StatusInProduction,
		Steps:   order.StatusInProduction.Steps(),
		At:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, hub.Publish(want))

	select {
	case got := <-sub.Updates():
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestTracker_Subscribe_UnknownID(t *testing.T) {
	orders := &ordersMock{byID: map[string]*order.Order{}}
	tr, _ := newTestTracker(t, orders)

	_, _, err := tr.Subscribe(context.Background(), "never-assigned")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestSubscription_Close_EndsFeed(t *testing.T) {
	o := &order.Order{ID: "order-1", Status: order.StatusPending}
	orders := &ordersMock{byID: map[string]*order.Order{"order-1": o}}
	tr, _ := newTestTracker(t, orders)
	tr.Remember("order-1")

	_, sub, err := tr.Subscribe(context.Background(), "order-1")
	require.NoError(t, err)
	sub.Close()

	select {
	case _, open := <-sub.Updates():
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("feed did not end after close")
	}
}

func TestHub_IsolatesOrders(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	defer hub.Close()

	subA, err := hub.Subscribe(context.Background(), "order-a")
	require.NoError(t, err)
	defer subA.Close()

	require.NoError(t, hub.Publish(Update{OrderID: "order-b", Status: order.StatusReady}))

	select {
	case got := <-subA.Updates():
		t.Fatalf("received another order's update: %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}
