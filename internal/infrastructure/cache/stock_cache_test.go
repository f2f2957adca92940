package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestMemoryStockCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss on empty cache", func(t *testing.T) {
		c := NewMemoryStockCache()
		_, ok := c.Get(ctx, uuid.New())
		assert.False(t, ok)
	})

	t.Run("hit within ttl", func(t *testing.T) {
		clock := newFakeClock()
		c := NewMemoryStockCache(WithClock(clock))
		id := uuid.New()
		c.Set(ctx, id, decimal.NewFromInt(42))

		clock.advance(29 * time.Second)
		v, ok := c.Get(ctx, id)
		require.True(t, ok)
		assert.True(t, v.Equal(decimal.NewFromInt(42)))
	})

	t.Run("expires at ttl and is dropped", func(t *testing.T) {
		clock := newFakeClock()
		c := NewMemoryStockCache(WithClock(clock))
		id := uuid.New()
		c.Set(ctx, id, decimal.NewFromInt(5))

		clock.advance(DefaultStockTTL)
		_, ok := c.Get(ctx, id)
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("set refreshes timestamp", func(t *testing.T) {
		clock := newFakeClock()
		c := NewMemoryStockCache(WithClock(clock), WithTTL(10*time.Second))
		id := uuid.New()
		c.Set(ctx, id, decimal.NewFromInt(1))
		clock.advance(8 * time.Second)
		c.Set(ctx, id, decimal.NewFromInt(2))
		clock.advance(8 * time.Second)

		v, ok := c.Get(ctx, id)
		require.True(t, ok)
		assert.True(t, v.Equal(decimal.NewFromInt(2)))
	})

	t.Run("set at ages from the fetch time", func(t *testing.T) {
		clock := newFakeClock()
		c := NewMemoryStockCache(WithClock(clock))
		id := uuid.New()
		c.SetAt(ctx, id, decimal.NewFromInt(7), clock.Now().Add(-20*time.Second))

		_, ok := c.Get(ctx, id)
		require.True(t, ok)
		clock.advance(10 * time.Second)
		_, ok = c.Get(ctx, id)
		assert.False(t, ok)

		c.SetAt(ctx, id, decimal.NewFromInt(7), clock.Now().Add(-DefaultStockTTL))
		assert.Equal(t, 0, c.Len())
	})

	t.Run("invalidate", func(t *testing.T) {
		c := NewMemoryStockCache()
		id := uuid.New()
		c.Set(ctx, id, decimal.NewFromInt(1))
		c.Invalidate(id)
		_, ok := c.Get(ctx, id)
		assert.False(t, ok)
	})

	t.Run("clock func adapter", func(t *testing.T) {
		now := time.Now()
		c := NewMemoryStockCache(WithClock(shared.ClockFunc(func() time.Time { return now })))
		id := uuid.New()
		c.Set(ctx, id, decimal.NewFromInt(3))
		_, ok := c.Get(ctx, id)
		assert.True(t, ok)
	})
}
