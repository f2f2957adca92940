package orderentry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/erp/orderentry/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Lookup kinds used in logs and metrics
const (
	LookupCatalog = "catalog"
	LookupBatch   = "batch"
	LookupStock   = "stock"
	LookupSearch  = "search"
)

// StockCache caches stock levels in base pieces per product
type StockCache interface {
	Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool)
	Set(ctx context.Context, productID uuid.UUID, pieces decimal.Decimal)
}

// Recorder receives engine events for metrics
type Recorder interface {
	StockClamped(ctx context.Context)
	StockCacheHit(ctx context.Context)
	StockCacheMiss(ctx context.Context)
	LookupSuperseded(ctx context.Context)
	LookupFailed(ctx context.Context, lookup string)
	LookupCompleted(ctx context.Context, lookup string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) StockClamped(context.Context)                            {}
func (nopRecorder) StockCacheHit(context.Context)                           {}
func (nopRecorder) StockCacheMiss(context.Context)                          {}
func (nopRecorder) LookupSuperseded(context.Context)                        {}
func (nopRecorder) LookupFailed(context.Context, string)                    {}
func (nopRecorder) LookupCompleted(context.Context, string, time.Duration) {}

// ProductQuery identifies the product an operator picked. The first non-empty
// field wins, in order ID, Code, ScanCode, Text. Text picks the first search hit.
type ProductQuery struct {
	ID       uuid.UUID
	Code     string
	ScanCode string
	Text     string
}

// IsEmpty reports whether no field is set
func (q ProductQuery) IsEmpty() bool {
	return q.ID == uuid.Nil && strings.TrimSpace(q.Code) == "" &&
		strings.TrimSpace(q.ScanCode) == "" && strings.TrimSpace(q.Text) == ""
}

// Lookups wraps the catalog, batch and stock repositories. Failures are
// logged and turned into empty results; they never reach the operator.
type Lookups struct {
	products catalog.ProductRepository
	batches  inventory.BatchRepository
	stock    inventory.StockRepository
	cache    StockCache
	logger   *zap.Logger
	recorder Recorder
	timeout  time.Duration
}

// NewLookups creates Lookups. cache may be nil.
func NewLookups(
	products catalog.ProductRepository,
	batches inventory.BatchRepository,
	stock inventory.StockRepository,
	cache StockCache,
	logger *zap.Logger,
	recorder Recorder,
	timeout time.Duration,
) *Lookups {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Lookups{
		products: products,
		batches:  batches,
		stock:    stock,
		cache:    cache,
		logger:   logger,
		recorder: recorder,
		timeout:  timeout,
	}
}

func (l *Lookups) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.timeout)
}

// FindProduct resolves a query against the catalog. Any failure yields
// shared.ErrNotFound.
func (l *Lookups) FindProduct(ctx context.Context, q ProductQuery) (*catalog.Product, error) {
	if q.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product query is empty")
	}

	ctx, span := telemetry.StartSpan(ctx, "lookup.catalog",
		telemetry.WithAttribute(telemetry.SpanAttrLookup, LookupCatalog))
	defer span.End()

	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var (
		product *catalog.Product
		err     error
	)
	switch {
	case q.ID != uuid.Nil:
		product, err = l.products.FindByID(ctx, q.ID)
	case strings.TrimSpace(q.Code) != "":
		product, err = l.products.FindByCode(ctx, strings.TrimSpace(q.Code))
	case strings.TrimSpace(q.ScanCode) != "":
		product, err = l.products.FindByScanCode(ctx, strings.TrimSpace(q.ScanCode))
	default:
		var hits []catalog.Product
		hits, err = l.products.Search(ctx, strings.TrimSpace(q.Text), 1)
		if err == nil {
			if len(hits) == 0 {
				err = shared.ErrNotFound
			} else {
				product = &hits[0]
			}
		}
	}
	l.recorder.LookupCompleted(ctx, LookupCatalog, time.Since(start))

	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			telemetry.RecordError(span, err)
			l.recorder.LookupFailed(ctx, LookupCatalog)
			l.logger.Warn("Catalog lookup failed",
				zap.String("lookup", LookupCatalog),
				zap.String("product_id", q.ID.String()),
				zap.String("code", q.Code),
				zap.Error(err),
			)
		}
		return nil, shared.ErrNotFound
	}
	if product == nil {
		return nil, shared.ErrNotFound
	}
	span.SetAttributes(telemetry.AttrProductID.String(product.ID.String()))
	return product, nil
}

// Batches returns the batches of a product. A failed lookup yields no batches.
func (l *Lookups) Batches(ctx context.Context, productID uuid.UUID) []inventory.Batch {
	ctx, span := telemetry.StartSpan(ctx, "lookup.batches",
		telemetry.WithAttribute(telemetry.SpanAttrLookup, LookupBatch),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID))
	defer span.End()

	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	batches, err := l.batches.FindByProduct(ctx, productID)
	l.recorder.LookupCompleted(ctx, LookupBatch, time.Since(start))
	if err != nil {
		telemetry.RecordError(span, err)
		l.recorder.LookupFailed(ctx, LookupBatch)
		l.logger.Warn("Batch lookup failed",
			zap.String("lookup", LookupBatch),
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return nil
	}
	return batches
}

// StockPieces returns total stock for a product, serving from cache when
// possible. A failed lookup yields zero and is not cached.
func (l *Lookups) StockPieces(ctx context.Context, productID uuid.UUID) decimal.Decimal {
	ctx, span := telemetry.StartSpan(ctx, "lookup.stock",
		telemetry.WithAttribute(telemetry.SpanAttrLookup, LookupStock),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID))
	defer span.End()

	if l.cache != nil {
		if pieces, ok := l.cache.Get(ctx, productID); ok {
			l.recorder.StockCacheHit(ctx)
			telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true)
			return pieces
		}
		l.recorder.StockCacheMiss(ctx)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, false)

	lookupCtx, cancel := l.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	pieces, err := l.stock.StockPieces(lookupCtx, productID)
	l.recorder.LookupCompleted(ctx, LookupStock, time.Since(start))
	if err != nil {
		telemetry.RecordError(span, err)
		l.recorder.LookupFailed(ctx, LookupStock)
		l.logger.Warn("Stock lookup failed",
			zap.String("lookup", LookupStock),
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return decimal.Zero
	}

	if l.cache != nil {
		l.cache.Set(ctx, productID, pieces)
	}
	return pieces
}

// Search runs a free-text catalog search. A failed search yields no hits.
func (l *Lookups) Search(ctx context.Context, text string, limit int) []catalog.Product {
	ctx, span := telemetry.StartSpan(ctx, "lookup.search",
		telemetry.WithAttribute(telemetry.SpanAttrLookup, LookupSearch))
	defer span.End()

	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	products, err := l.products.Search(ctx, strings.TrimSpace(text), limit)
	l.recorder.LookupCompleted(ctx, LookupSearch, time.Since(start))
	if err != nil {
		telemetry.RecordError(span, err)
		l.recorder.LookupFailed(ctx, LookupSearch)
		l.logger.Warn("Product search failed",
			zap.String("lookup", LookupSearch),
			zap.String("text", text),
			zap.Error(err),
		)
		return nil
	}
	return products
}
