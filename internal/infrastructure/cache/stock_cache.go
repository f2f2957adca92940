// Package cache holds the short-lived stock caches that sit in front of the
// stock lookup.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/orderentry/internal/application/orderentry"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultStockTTL is how long a cached stock figure stays valid
const DefaultStockTTL = 30 * time.Second

type stockEntry struct {
	pieces   decimal.Decimal
	storedAt time.Time
}

// MemoryStockCache keeps stock figures per product in process memory.
// Entries older than the TTL are misses and are dropped on read.
type MemoryStockCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]stockEntry
	ttl     time.Duration
	clock   shared.Clock
}

// MemoryStockCacheOption is a functional option for configuring MemoryStockCache
type MemoryStockCacheOption func(*MemoryStockCache)

// WithTTL sets the entry lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) MemoryStockCacheOption {
	return func(c *MemoryStockCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the clock used to stamp and age entries
func WithClock(clock shared.Clock) MemoryStockCacheOption {
	return func(c *MemoryStockCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewMemoryStockCache creates an empty cache with DefaultStockTTL
func NewMemoryStockCache(opts ...MemoryStockCacheOption) *MemoryStockCache {
	c := &MemoryStockCache{
		entries: make(map[uuid.UUID]stockEntry),
		ttl:     DefaultStockTTL,
		clock:   shared.SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached pieces for productID if the entry is younger than the TTL
func (c *MemoryStockCache) Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool) {
	pieces, _, ok := c.GetStamped(ctx, productID)
	return pieces, ok
}

// GetStamped is Get that also returns when the figure was fetched
func (c *MemoryStockCache) GetStamped(_ context.Context, productID uuid.UUID) (decimal.Decimal, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[productID]
	if !ok {
		return decimal.Zero, time.Time{}, false
	}
	if c.clock.Now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, productID)
		return decimal.Zero, time.Time{}, false
	}
	return e.pieces, e.storedAt, true
}

// Set stores pieces for productID stamped with the current time
func (c *MemoryStockCache) Set(ctx context.Context, productID uuid.UUID, pieces decimal.Decimal) {
	c.SetAt(ctx, productID, pieces, c.clock.Now())
}

// SetAt stores pieces fetched at fetchedAt. The entry ages from fetchedAt,
// so a figure copied from another tier keeps its original deadline.
func (c *MemoryStockCache) SetAt(_ context.Context, productID uuid.UUID, pieces decimal.Decimal, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clock.Now().Sub(fetchedAt) >= c.ttl {
		delete(c.entries, productID)
		return
	}
	c.entries[productID] = stockEntry{pieces: pieces, storedAt: fetchedAt}
}

// Now returns the cache clock's current time
func (c *MemoryStockCache) Now() time.Time {
	return c.clock.Now()
}

// Invalidate drops the entry for productID
func (c *MemoryStockCache) Invalidate(productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, productID)
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryStockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ orderentry.StockCache = (*MemoryStockCache)(nil)
