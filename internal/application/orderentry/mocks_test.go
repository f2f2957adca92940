package orderentry

import (
	"context"
	"sync"
	"time"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByScanCode(ctx context.Context, scanCode string) (*catalog.Product, error) {
	args := m.Called(ctx, scanCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, text string, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, text, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

// MockBatchRepository is a mock implementation of inventory.BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Batch, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Batch), args.Error(1)
}

// MockStockRepository is a mock implementation of inventory.StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) StockPieces(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// mapStockCache is an in-memory StockCache without expiry
type mapStockCache struct {
	mu     sync.Mutex
	values map[uuid.UUID]decimal.Decimal
}

func newMapStockCache() *mapStockCache {
	return &mapStockCache{values: make(map[uuid.UUID]decimal.Decimal)}
}

func (c *mapStockCache) Get(_ context.Context, productID uuid.UUID) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[productID]
	return v, ok
}

func (c *mapStockCache) Set(_ context.Context, productID uuid.UUID, pieces decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[productID] = pieces
}

// countingRecorder counts engine events
type countingRecorder struct {
	mu         sync.Mutex
	clamps     int
	hits       int
	misses     int
	superseded int
	failures   map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{failures: make(map[string]int)}
}

func (r *countingRecorder) StockClamped(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clamps++
}

func (r *countingRecorder) StockCacheHit(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *countingRecorder) StockCacheMiss(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

func (r *countingRecorder) LookupSuperseded(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.superseded++
}

func (r *countingRecorder) LookupFailed(_ context.Context, lookup string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[lookup]++
}

func (r *countingRecorder) LookupCompleted(context.Context, string, time.Duration) {}

// manualScheduler captures AfterFunc calls so tests fire them explicitly
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// fireActive runs every timer that was not stopped and returns how many ran
func (s *manualScheduler) fireActive() int {
	s.mu.Lock()
	active := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.stopped {
			t.stopped = true
			active = append(active, t)
		}
	}
	s.mu.Unlock()

	for _, t := range active {
		t.fn()
	}
	return len(active)
}
