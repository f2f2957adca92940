package orderentry

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLookups(t *testing.T, cache StockCache) (*Lookups, *MockProductRepository, *MockBatchRepository, *MockStockRepository, *countingRecorder, *observer.ObservedLogs) {
	t.Helper()
	products := new(MockProductRepository)
	batches := new(MockBatchRepository)
	stock := new(MockStockRepository)
	rec := newCountingRecorder()
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLookups(products, batches, stock, cache, zap.New(core), rec, DefaultLookupTimeout)
	return l, products, batches, stock, rec, logs
}

func TestLookups_FindProduct(t *testing.T) {
	ctx := context.Background()
	p := newTestProduct(t, "P-001", "105")

	t.Run("by id", func(t *testing.T) {
		l, products, _, _, _, _ := newTestLookups(t, nil)
		products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

		got, err := l.FindProduct(ctx, ProductQuery{ID: p.ID})
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("by code trims input", func(t *testing.T) {
		l, products, _, _, _, _ := newTestLookups(t, nil)
		products.On("FindByCode", mock.Anything, "P-001").Return(p, nil)

		got, err := l.FindProduct(ctx, ProductQuery{Code: "  P-001 "})
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("by scan code", func(t *testing.T) {
		l, products, _, _, _, _ := newTestLookups(t, nil)
		products.On("FindByScanCode", mock.Anything, "6901234567890").Return(p, nil)

		_, err := l.FindProduct(ctx, ProductQuery{ScanCode: "6901234567890"})
		require.NoError(t, err)
	})

	t.Run("by text picks first hit", func(t *testing.T) {
		l, products, _, _, _, _ := newTestLookups(t, nil)
		products.On("Search", mock.Anything, "cola", 1).Return([]catalog.Product{*p}, nil)

		got, err := l.FindProduct(ctx, ProductQuery{Text: "cola"})
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("text without hits is not found", func(t *testing.T) {
		l, products, _, _, rec, _ := newTestLookups(t, nil)
		products.On("Search", mock.Anything, "nothing", 1).Return([]catalog.Product{}, nil)

		_, err := l.FindProduct(ctx, ProductQuery{Text: "nothing"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Zero(t, rec.failures[LookupCatalog])
	})

	t.Run("empty query is invalid", func(t *testing.T) {
		l, _, _, _, _, _ := newTestLookups(t, nil)

		_, err := l.FindProduct(ctx, ProductQuery{Code: "  "})
		assert.Equal(t, "INVALID_INPUT", shared.CodeOf(err))
	})

	t.Run("failure becomes not found and is logged", func(t *testing.T) {
		l, products, _, _, rec, logs := newTestLookups(t, nil)
		products.On("FindByID", mock.Anything, p.ID).Return(nil, errors.New("connection refused"))

		_, err := l.FindProduct(ctx, ProductQuery{ID: p.ID})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, 1, rec.failures[LookupCatalog])

		warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
		require.Len(t, warnings, 1)
		assert.Equal(t, LookupCatalog, warnings[0].ContextMap()["lookup"])
	})
}

func TestLookups_Batches(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("returns batches", func(t *testing.T) {
		l, _, batches, _, _, _ := newTestLookups(t, nil)
		batches.On("FindByProduct", mock.Anything, productID).Return([]inventory.Batch{{BatchNumber: "B1"}}, nil)

		got := l.Batches(ctx, productID)
		require.Len(t, got, 1)
		assert.Equal(t, "B1", got[0].BatchNumber)
	})

	t.Run("failure yields no batches", func(t *testing.T) {
		l, _, batches, _, rec, logs := newTestLookups(t, nil)
		batches.On("FindByProduct", mock.Anything, productID).Return(nil, errors.New("timeout"))

		assert.Empty(t, l.Batches(ctx, productID))
		assert.Equal(t, 1, rec.failures[LookupBatch])
		assert.Equal(t, 1, logs.FilterMessage("Batch lookup failed").Len())
	})
}

func TestLookups_StockPieces(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("miss then hit", func(t *testing.T) {
		cache := newMapStockCache()
		l, _, _, stock, rec, _ := newTestLookups(t, cache)
		stock.On("StockPieces", mock.Anything, productID).Return(decimal.NewFromInt(12), nil).Once()

		assert.True(t, decimal.NewFromInt(12).Equal(l.StockPieces(ctx, productID)))
		assert.True(t, decimal.NewFromInt(12).Equal(l.StockPieces(ctx, productID)))

		stock.AssertNumberOfCalls(t, "StockPieces", 1)
		assert.Equal(t, 1, rec.misses)
		assert.Equal(t, 1, rec.hits)
	})

	t.Run("failure yields zero and is not cached", func(t *testing.T) {
		cache := newMapStockCache()
		l, _, _, stock, rec, _ := newTestLookups(t, cache)
		stock.On("StockPieces", mock.Anything, productID).Return(decimal.Zero, errors.New("unreachable"))

		assert.True(t, l.StockPieces(ctx, productID).IsZero())
		_, cached := cache.Get(ctx, productID)
		assert.False(t, cached)
		assert.Equal(t, 1, rec.failures[LookupStock])
	})

	t.Run("works without cache", func(t *testing.T) {
		l, _, _, stock, rec, _ := newTestLookups(t, nil)
		stock.On("StockPieces", mock.Anything, productID).Return(decimal.NewFromInt(3), nil)

		assert.True(t, decimal.NewFromInt(3).Equal(l.StockPieces(ctx, productID)))
		assert.Zero(t, rec.misses)
	})
}

func TestLookups_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("failure yields no hits", func(t *testing.T) {
		l, products, _, _, rec, _ := newTestLookups(t, nil)
		products.On("Search", mock.Anything, "x", 20).Return(nil, errors.New("boom"))

		assert.Empty(t, l.Search(ctx, "x", 20))
		assert.Equal(t, 1, rec.failures[LookupSearch])
	})
}
