package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/orderentry/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestEngineMetrics(t *testing.T) (*telemetry.EngineMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := telemetry.NewEngineMetrics(mp.Meter("orderentry-test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewEngineMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewEngineMetrics(nil)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Equal(t, "NewEngineMetrics: meter cannot be nil", err.Error())
}

func TestEngineMetrics_Counters(t *testing.T) {
	m, reader := newTestEngineMetrics(t)
	ctx := context.Background()

	m.StockClamped(ctx)
	m.StockClamped(ctx)
	m.StockCacheHit(ctx)
	m.StockCacheMiss(ctx)
	m.StockCacheMiss(ctx)
	m.StockCacheMiss(ctx)
	m.LookupSuperseded(ctx)
	m.LookupFailed(ctx, "catalog")
	m.LookupFailed(ctx, "stock")

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["orderentry.stock_clamps"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["orderentry.stock_cache.hits"]))
	assert.Equal(t, int64(3), sumOf(t, metrics["orderentry.stock_cache.misses"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["orderentry.lookup.superseded"]))

	failures := metrics["orderentry.lookup.failures"].Data.(metricdata.Sum[int64])
	assert.Len(t, failures.DataPoints, 2, "one data point per lookup kind")
}

func TestEngineMetrics_LookupDuration(t *testing.T) {
	m, reader := newTestEngineMetrics(t)

	m.LookupCompleted(context.Background(), "batches", 20*time.Millisecond)

	metrics := collect(t, reader)
	hist, ok := metrics["orderentry.lookup.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 0.02, hist.DataPoints[0].Sum, 1e-9)
}
