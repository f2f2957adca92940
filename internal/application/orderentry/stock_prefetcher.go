package orderentry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPrefetchDelay is how long a product must stay highlighted before its
// stock is fetched
const DefaultPrefetchDelay = 300 * time.Millisecond

// Timer is the part of *time.Timer the prefetcher uses
type Timer interface {
	Stop() bool
}

// AfterFuncFunc schedules f after d, like time.AfterFunc
type AfterFuncFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// StockPrefetcher debounces stock lookups while the operator scrolls a
// product list. Only the product highlighted last, once the delay elapses,
// is fetched.
type StockPrefetcher struct {
	mu        sync.Mutex
	delay     time.Duration
	afterFunc AfterFuncFunc
	fetch     func(ctx context.Context, productID uuid.UUID)
	timer     Timer
	pending   uuid.UUID
}

// NewStockPrefetcher creates a prefetcher calling fetch after delay
func NewStockPrefetcher(delay time.Duration, afterFunc AfterFuncFunc, fetch func(ctx context.Context, productID uuid.UUID)) *StockPrefetcher {
	if delay <= 0 {
		delay = DefaultPrefetchDelay
	}
	if afterFunc == nil {
		afterFunc = systemAfterFunc
	}
	return &StockPrefetcher{
		delay:     delay,
		afterFunc: afterFunc,
		fetch:     fetch,
	}
}

// Highlight restarts the debounce window for productID
func (p *StockPrefetcher) Highlight(productID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.pending = productID
	p.timer = p.afterFunc(p.delay, func() { p.fire(productID) })
}

// Pending returns the product waiting to be fetched, uuid.Nil when idle
func (p *StockPrefetcher) Pending() uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Stop cancels any pending fetch
func (p *StockPrefetcher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.pending = uuid.Nil
}

func (p *StockPrefetcher) fire(productID uuid.UUID) {
	p.mu.Lock()
	if p.pending != productID {
		p.mu.Unlock()
		return
	}
	p.pending = uuid.Nil
	p.timer = nil
	p.mu.Unlock()

	p.fetch(context.Background(), productID)
}
