package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/erp/orderentry/internal/application/orderentry"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultStockKeyPrefix namespaces stock keys in a shared Redis
const DefaultStockKeyPrefix = "orderentry:stock:"

// RedisStockCache shares stock figures between instances. Each product is a
// hash holding the pieces as a decimal string and the fetch time in unix
// milliseconds; the key expires TTL after the fetch. Any Redis failure reads
// as a miss and writes are best effort.
type RedisStockCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	clock     shared.Clock
	logger    *zap.Logger
}

const (
	fieldPieces    = "pieces"
	fieldFetchedAt = "fetched_at"
)

// RedisStockCacheOption is a functional option for configuring RedisStockCache
type RedisStockCacheOption func(*RedisStockCache)

// WithKeyPrefix sets the key prefix
func WithKeyPrefix(prefix string) RedisStockCacheOption {
	return func(c *RedisStockCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithRedisTTL sets the key expiry. Non-positive values are ignored.
func WithRedisTTL(ttl time.Duration) RedisStockCacheOption {
	return func(c *RedisStockCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRedisClock sets the clock used to age entries
func WithRedisClock(clock shared.Clock) RedisStockCacheOption {
	return func(c *RedisStockCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithRedisLogger sets the logger
func WithRedisLogger(logger *zap.Logger) RedisStockCacheOption {
	return func(c *RedisStockCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewRedisStockCache wraps an existing client
func NewRedisStockCache(client *redis.Client, opts ...RedisStockCacheOption) *RedisStockCache {
	c := &RedisStockCache{
		client:    client,
		keyPrefix: DefaultStockKeyPrefix,
		ttl:       DefaultStockTTL,
		clock:     shared.SystemClock{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get reads the stock figure for productID
func (c *RedisStockCache) Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool) {
	pieces, _, ok := c.GetStamped(ctx, productID)
	return pieces, ok
}

// GetStamped reads the stock figure for productID and when it was fetched
func (c *RedisStockCache) GetStamped(ctx context.Context, productID uuid.UUID) (decimal.Decimal, time.Time, bool) {
	fields, err := c.client.HGetAll(ctx, c.key(productID)).Result()
	if err != nil {
		c.logger.Warn("Redis stock cache read failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		return decimal.Zero, time.Time{}, false
	}
	if len(fields) == 0 {
		return decimal.Zero, time.Time{}, false
	}

	pieces, err := decimal.NewFromString(fields[fieldPieces])
	if err != nil {
		c.discard(productID, fields)
		return decimal.Zero, time.Time{}, false
	}
	millis, err := strconv.ParseInt(fields[fieldFetchedAt], 10, 64)
	if err != nil {
		c.discard(productID, fields)
		return decimal.Zero, time.Time{}, false
	}
	fetchedAt := time.UnixMilli(millis)
	if c.clock.Now().Sub(fetchedAt) >= c.ttl {
		return decimal.Zero, time.Time{}, false
	}
	return pieces, fetchedAt, true
}

// Set writes the stock figure for productID, fetched now
func (c *RedisStockCache) Set(ctx context.Context, productID uuid.UUID, pieces decimal.Decimal) {
	c.SetAt(ctx, productID, pieces, c.clock.Now())
}

// SetAt writes a figure fetched at fetchedAt. The key expires TTL after
// fetchedAt; a figure already that old is not written.
func (c *RedisStockCache) SetAt(ctx context.Context, productID uuid.UUID, pieces decimal.Decimal, fetchedAt time.Time) {
	remaining := c.ttl - c.clock.Now().Sub(fetchedAt)
	if remaining <= 0 {
		return
	}
	key := c.key(productID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldPieces, pieces.String(),
			fieldFetchedAt, strconv.FormatInt(fetchedAt.UnixMilli(), 10))
		pipe.PExpire(ctx, key, remaining)
		return nil
	})
	if err != nil {
		c.logger.Warn("Redis stock cache write failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

func (c *RedisStockCache) discard(productID uuid.UUID, fields map[string]string) {
	c.logger.Warn("Discarding malformed stock cache value",
		zap.String("product_id", productID.String()),
		zap.String("pieces", fields[fieldPieces]),
		zap.String("fetched_at", fields[fieldFetchedAt]))
}

// Close closes the underlying client
func (c *RedisStockCache) Close() error {
	return c.client.Close()
}

func (c *RedisStockCache) key(productID uuid.UUID) string {
	return c.keyPrefix + productID.String()
}

var _ orderentry.StockCache = (*RedisStockCache)(nil)
