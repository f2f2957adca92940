package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// MetricsError reports a failure constructing a metrics component.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewEngineMetrics", Err: "meter cannot be nil"}

// EngineMetrics counts order-entry engine events: stock clamps, stock cache
// hits and misses, superseded lookups and failed lookups.
type EngineMetrics struct {
	stockClamps      *Counter
	cacheHits        *Counter
	cacheMisses      *Counter
	lookupSuperseded *Counter
	lookupFailures   *Counter
	lookupDuration   *Histogram
}

// NewEngineMetrics registers the engine instruments on meter.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &EngineMetrics{}
	var err error
	if m.stockClamps, err = NewCounter(meter, "orderentry.stock_clamps",
		"Quantities clamped to available stock", "{clamps}"); err != nil {
		return nil, err
	}
	if m.cacheHits, err = NewCounter(meter, "orderentry.stock_cache.hits",
		"Stock lookups served from cache", "{hits}"); err != nil {
		return nil, err
	}
	if m.cacheMisses, err = NewCounter(meter, "orderentry.stock_cache.misses",
		"Stock lookups that missed the cache", "{misses}"); err != nil {
		return nil, err
	}
	if m.lookupSuperseded, err = NewCounter(meter, "orderentry.lookup.superseded",
		"Product lookups discarded because a newer selection was made", "{lookups}"); err != nil {
		return nil, err
	}
	if m.lookupFailures, err = NewCounter(meter, "orderentry.lookup.failures",
		"Catalog, batch or stock lookups that failed", "{lookups}"); err != nil {
		return nil, err
	}
	if m.lookupDuration, err = NewHistogram(meter, "orderentry.lookup.duration",
		"Latency of catalog, batch and stock lookups", "s", LookupDurationBuckets); err != nil {
		return nil, err
	}
	return m, nil
}

// StockClamped records a quantity clamp
func (m *EngineMetrics) StockClamped(ctx context.Context) {
	m.stockClamps.Inc(ctx)
}

// StockCacheHit records a stock cache hit
func (m *EngineMetrics) StockCacheHit(ctx context.Context) {
	m.cacheHits.Inc(ctx)
}

// StockCacheMiss records a stock cache miss
func (m *EngineMetrics) StockCacheMiss(ctx context.Context) {
	m.cacheMisses.Inc(ctx)
}

// LookupSuperseded records a discarded stale lookup
func (m *EngineMetrics) LookupSuperseded(ctx context.Context) {
	m.lookupSuperseded.Inc(ctx)
}

// LookupFailed records a failed lookup of the given kind
func (m *EngineMetrics) LookupFailed(ctx context.Context, lookup string) {
	m.lookupFailures.Inc(ctx, AttrLookup.String(lookup))
}

// LookupCompleted records the latency of a lookup of the given kind
func (m *EngineMetrics) LookupCompleted(ctx context.Context, lookup string, d time.Duration) {
	m.lookupDuration.RecordDuration(ctx, d, AttrLookup.String(lookup))
}
