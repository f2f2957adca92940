package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/erp/orderentry/internal/application/orderentry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StampedStockCache is a stock cache that remembers when each figure was
// fetched. Tiers exchange the fetch time so a copied figure expires when the
// original would have.
type StampedStockCache interface {
	GetStamped(ctx context.Context, productID uuid.UUID) (decimal.Decimal, time.Time, bool)
	SetAt(ctx context.Context, productID uuid.UUID, pieces decimal.Decimal, fetchedAt time.Time)
}

// TieredStockCache reads the in-process cache first and falls back to a
// shared tier, back-filling the local tier on a shared hit. Writes go to both.
type TieredStockCache struct {
	local  *MemoryStockCache
	shared StampedStockCache

	localHits  int64
	sharedHits int64
	misses     int64
}

// TieredStockStats reports per-tier hit counts
type TieredStockStats struct {
	LocalHits  int64
	SharedHits int64
	Misses     int64
}

// NewTieredStockCache creates a two-tier cache. A nil shared tier leaves only
// the local tier.
func NewTieredStockCache(local *MemoryStockCache, shared StampedStockCache) *TieredStockCache {
	if local == nil {
		local = NewMemoryStockCache()
	}
	return &TieredStockCache{local: local, shared: shared}
}

// Get implements orderentry.StockCache
func (c *TieredStockCache) Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool) {
	if v, ok := c.local.Get(ctx, productID); ok {
		atomic.AddInt64(&c.localHits, 1)
		return v, true
	}
	if c.shared != nil {
		if v, fetchedAt, ok := c.shared.GetStamped(ctx, productID); ok {
			// The local TTL decides; a shared figure already past it is a miss.
			c.local.SetAt(ctx, productID, v, fetchedAt)
			if v, ok := c.local.Get(ctx, productID); ok {
				atomic.AddInt64(&c.sharedHits, 1)
				return v, true
			}
		}
	}
	atomic.AddInt64(&c.misses, 1)
	return decimal.Zero, false
}

// Set implements orderentry.StockCache
func (c *TieredStockCache) Set(ctx context.Context, productID uuid.UUID, pieces decimal.Decimal) {
	fetchedAt := c.local.Now()
	c.local.SetAt(ctx, productID, pieces, fetchedAt)
	if c.shared != nil {
		c.shared.SetAt(ctx, productID, pieces, fetchedAt)
	}
}

// Stats returns the hit counters
func (c *TieredStockCache) Stats() TieredStockStats {
	return TieredStockStats{
		LocalHits:  atomic.LoadInt64(&c.localHits),
		SharedHits: atomic.LoadInt64(&c.sharedHits),
		Misses:     atomic.LoadInt64(&c.misses),
	}
}

var (
	_ orderentry.StockCache = (*TieredStockCache)(nil)
	_ StampedStockCache     = (*MemoryStockCache)(nil)
	_ StampedStockCache     = (*RedisStockCache)(nil)
)
