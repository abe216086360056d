package tracker

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"

	"github.com/najugourmet/storefront/internal/domain/order"
)

// Sizing for the known-id filter. False positives only cost a store lookup;
// ids the store never assigned are rejected without one.
const (
	knownIDCapacity = 100_000
	knownIDFPR      = 0.01
)

// Snapshot is the point-in-time view of an order a customer polls for.
type Snapshot struct {
	Order *order.Order
	Steps [order.ProgressionSteps]order.StepState
}

// Tracker answers order status queries and opens live status subscriptions.
// A bloom filter over every id the store has assigned screens out lookups for
// ids that cannot exist, so probing random ids never reaches the store.
type Tracker struct {
	orders order.Repository
	hub    *Hub

	mu    sync.RWMutex
	known *bloom.BloomFilter
}

// New creates a Tracker. Call Prime before serving to load existing ids.
func New(orders order.Repository, hub *Hub) *Tracker {
	return &Tracker{
		orders: orders,
		hub:    hub,
		known:  bloom.NewWithEstimates(knownIDCapacity, knownIDFPR),
	}
}

// Prime loads every assigned order id into the known-id filter.
func (t *Tracker) Prime(ctx context.Context) error {
	ids, err := t.orders.IDs(ctx)
	if err != nil {
		return errors.Wrap(err, "load order ids")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		t.known.AddString(id)
	}
	return nil
}

// Remember records a newly assigned order id.
func (t *Tracker) Remember(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.known.AddString(id)
}

func (t *Tracker) mightExist(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.known.TestString(id)
}

// Get returns the order's current snapshot, or order.ErrNotFound when the id
// was never assigned.
func (t *Tracker) Get(ctx context.Context, id string) (*Snapshot, error) {
	if !t.mightExist(id) {
		return nil, order.ErrNotFound
	}
	o, err := t.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Order: o, Steps: o.Status.Steps()}, nil
}

// Subscribe opens a live status feed for an existing order. The current
// snapshot is returned alongside so the caller can render the initial state
// before the first change arrives.
func (t *Tracker) Subscribe(ctx context.Context, id string) (*Snapshot, *Subscription, error) {
	snap, err := t.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sub, err := t.hub.Subscribe(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return snap, sub, nil
}
