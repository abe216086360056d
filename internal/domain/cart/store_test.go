package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := NewStore(time.Hour)

	s.Update("a", func(c Cart) Cart { return c.Add(newItem("i1", "22.00", 1)) })
	s.Update("b", func(c Cart) Cart { return c.Add(newItem("i2", "10.00", 2)) })

	assert.Len(t, s.Cart("a").Items, 1)
	assert.Len(t, s.Cart("b").Items, 1)
	assert.Equal(t, "i2", s.Cart("b").Items[0].ID)
}

func TestStore_SubmitGate(t *testing.T) {
	s := NewStore(time.Hour)

	require.True(t, s.TryBeginSubmit("a"))
	assert.False(t, s.TryBeginSubmit("a"), "second attempt while in flight is rejected")
	assert.True(t, s.TryBeginSubmit("b"), "gate is per session")

	s.EndSubmit("a")
	assert.True(t, s.TryBeginSubmit("a"))
}

func TestStore_LastOrderID(t *testing.T) {
	s := NewStore(time.Hour)

	assert.Empty(t, s.LastOrderID("a"))
	s.SetLastOrderID("a", "order-1")
	s.SetLastOrderID("a", "order-2")
	assert.Equal(t, "order-2", s.LastOrderID("a"))
}

func TestStore_EvictsIdleSessions(t *testing.T) {
	s := NewStore(time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Update("idle", func(c Cart) Cart { return c.Add(newItem("i1", "22.00", 1)) })
	s.evict(base.Add(2 * time.Minute))

	assert.Empty(t, s.Cart("idle").Items, "idle session was evicted")
}

func TestStore_EvictSparesInFlightSubmissions(t *testing.T) {
	s := NewStore(time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Update("busy", func(c Cart) Cart { return c.Add(newItem("i1", "22.00", 1)) })
	require.True(t, s.TryBeginSubmit("busy"))

	s.evict(base.Add(2 * time.Minute))
	assert.Len(t, s.Cart("busy").Items, 1)
}
