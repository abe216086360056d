package cart

import (
	"context"
	"sync"
	"time"
)

// session holds the per-session storefront state: the cart, the last
// successfully submitted order id, and the submission busy flag.
type session struct {
	cart        Cart
	lastOrderID string
	submitting  bool
	touched     time.Time
}

// Store keeps per-session carts in memory. Each session has exactly one
// mutator (the customer's browser session), so operations are last-writer-wins
// with no reconciliation. Idle sessions are evicted after the TTL.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a session store with the given idle TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// get returns the session, creating it when absent. Caller must hold s.mu.
func (s *Store) get(sessionID string) *session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.touched = s.now()
	return sess
}

// Cart returns the current cart for the session.
func (s *Store) Cart(sessionID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(sessionID).cart
}

// Update applies fn to the session's cart and stores the result.
func (s *Store) Update(sessionID string, fn func(Cart) Cart) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(sessionID)
	sess.cart = fn(sess.cart)
	return sess.cart
}

// LastOrderID returns the session's last submitted order id, if any.
func (s *Store) LastOrderID(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(sessionID).lastOrderID
}

// SetLastOrderID records the session's last submitted order id, supplanting
// any previous value.
func (s *Store) SetLastOrderID(sessionID, orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(sessionID).lastOrderID = orderID
}

// TryBeginSubmit acquires the session's submission gate. It returns false when
// a submission is already in flight: the second attempt is rejected, not
// queued.
func (s *Store) TryBeginSubmit(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(sessionID)
	if sess.submitting {
		return false
	}
	sess.submitting = true
	return true
}

// EndSubmit releases the session's submission gate.
func (s *Store) EndSubmit(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(sessionID).submitting = false
}

// StartCleanup launches a goroutine that evicts idle sessions every interval
// until ctx is cancelled.
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.evict(now)
			}
		}
	}()
}

func (s *Store) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if now.Sub(sess.touched) >= s.ttl && !sess.submitting {
			delete(s.sessions, id)
		}
	}
}
