package orderentry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/erp/orderentry/internal/domain/trade"
	"github.com/erp/orderentry/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSearchLimit is the page size of a product search
	DefaultSearchLimit = 20
	// MaxSearchLimit caps the page size of a product search
	MaxSearchLimit = 100
	// DefaultLookupTimeout bounds each catalog, batch or stock lookup
	DefaultLookupTimeout = 3 * time.Second
)

// Defaults seed the settings of new documents
type Defaults struct {
	TaxMode    trade.TaxMode
	VATApplies bool
	// RateType applies to sales and quotations; purchase returns always
	// start on the purchase rate
	RateType catalog.RateType
	VATRate  decimal.Decimal
}

// DefaultDefaults returns inclusive tax, VAT on, retail rate and the default VAT rate
func DefaultDefaults() Defaults {
	return Defaults{
		TaxMode:    trade.TaxModeInclusive,
		VATApplies: true,
		RateType:   catalog.RateTypeRetail,
		VATRate:    trade.DefaultVATRate(),
	}
}

func (d Defaults) settingsFor(kind trade.DocumentKind) trade.DocumentSettings {
	s := trade.DefaultSettings(kind)
	if d.TaxMode.IsValid() {
		s.TaxMode = d.TaxMode
	}
	s.VATApplies = d.VATApplies
	if kind != trade.DocumentKindPurchaseReturn && d.RateType.IsValid() {
		s.RateType = d.RateType
	}
	if d.VATRate.IsPositive() {
		s.VATRate = d.VATRate
	}
	return s
}

type serviceConfig struct {
	logger        *zap.Logger
	recorder      Recorder
	cache         StockCache
	defaults      Defaults
	prefetchDelay time.Duration
	afterFunc     AfterFuncFunc
	lookupTimeout time.Duration
}

// Option configures a Service
type Option func(*serviceConfig)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *serviceConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(c *serviceConfig) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithStockCache sets the stock cache consulted before stock lookups
func WithStockCache(cache StockCache) Option {
	return func(c *serviceConfig) {
		c.cache = cache
	}
}

// WithDefaults sets the settings of new documents
func WithDefaults(d Defaults) Option {
	return func(c *serviceConfig) {
		c.defaults = d
	}
}

// WithPrefetchDelay sets the stock prefetch debounce window
func WithPrefetchDelay(d time.Duration) Option {
	return func(c *serviceConfig) {
		c.prefetchDelay = d
	}
}

// WithAfterFunc replaces the timer used for debouncing
func WithAfterFunc(f AfterFuncFunc) Option {
	return func(c *serviceConfig) {
		c.afterFunc = f
	}
}

// WithLookupTimeout bounds each lookup; zero disables the bound
func WithLookupTimeout(d time.Duration) Option {
	return func(c *serviceConfig) {
		c.lookupTimeout = d
	}
}

// Service runs order entry for open documents: product picks with batch
// selection and stock bounds, field edits, row commits and settings changes.
type Service struct {
	registry   *Registry
	lookups    *Lookups
	selector   *inventory.BatchSelector
	allocator  *inventory.StockAllocator
	prefetcher *StockPrefetcher
	defaults   Defaults
	logger     *zap.Logger
	recorder   Recorder
}

// NewService creates a new order-entry Service
func NewService(
	products catalog.ProductRepository,
	batches inventory.BatchRepository,
	stock inventory.StockRepository,
	opts ...Option,
) *Service {
	cfg := serviceConfig{
		logger:        zap.NewNop(),
		recorder:      nopRecorder{},
		defaults:      DefaultDefaults(),
		prefetchDelay: DefaultPrefetchDelay,
		lookupTimeout: DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	lookups := NewLookups(products, batches, stock, cfg.cache, cfg.logger, cfg.recorder, cfg.lookupTimeout)
	s := &Service{
		registry:  NewRegistry(),
		lookups:   lookups,
		selector:  inventory.NewBatchSelector(),
		allocator: inventory.NewStockAllocator(),
		defaults:  cfg.defaults,
		logger:    cfg.logger,
		recorder:  cfg.recorder,
	}
	s.prefetcher = NewStockPrefetcher(cfg.prefetchDelay, cfg.afterFunc, func(ctx context.Context, productID uuid.UUID) {
		lookups.StockPieces(ctx, productID)
	})
	return s
}

// Registry returns the open-document registry
func (s *Service) Registry() *Registry {
	return s.registry
}

// Close stops background work
func (s *Service) Close() {
	s.prefetcher.Stop()
}

// NewDocument opens a document of the given kind with one empty line
func (s *Service) NewDocument(kind trade.DocumentKind, update SettingsUpdate) (*DocumentResponse, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_KIND", "Document kind is invalid")
	}
	settings := s.defaults.settingsFor(kind)
	if update.TaxMode != nil {
		settings.TaxMode = *update.TaxMode
	}
	if update.VATApplies != nil {
		settings.VATApplies = *update.VATApplies
	}
	if update.RateType != nil {
		settings.RateType = *update.RateType
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	grid := trade.NewOrderGrid(settings, trade.WithStockAllocator(s.allocator))
	d := s.registry.create(grid)
	s.logger.Info("Document opened",
		zap.String("document_id", d.id.String()),
		zap.String("kind", string(kind)),
		zap.String("rate_type", string(settings.RateType)),
	)

	d.mu.Lock()
	defer d.mu.Unlock()
	return s.documentResponse(d), nil
}

// Document returns the current state of an open document
func (s *Service) Document(docID uuid.UUID) (*DocumentResponse, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return s.documentResponse(d), nil
}

// CloseDocument discards an open document
func (s *Service) CloseDocument(docID uuid.UUID) error {
	return s.registry.delete(docID)
}

// AddLine appends an empty line
func (s *Service) AddLine(docID uuid.UUID) (uuid.UUID, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return uuid.Nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.grid.AddLine(), nil
}

// RemoveLine removes a line and drops any lookup or batch choice in flight for it
func (s *Service) RemoveLine(docID, lineID uuid.UUID) (*DocumentResponse, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.grid.RemoveLine(lineID); err != nil {
		return nil, err
	}
	d.forgetLine(lineID)
	return s.documentResponse(d), nil
}

// FocusRow moves focus into a row
func (s *Service) FocusRow(docID, lineID uuid.UUID) error {
	d, err := s.registry.get(docID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.grid.FocusRow(lineID)
}

// Commit accepts a row and moves focus to the next one. A failed validation
// returns a *trade.RowValidationError naming the field to focus.
func (s *Service) Commit(docID, lineID uuid.UUID) (*CommitResult, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := d.grid.Commit(lineID)
	if err != nil {
		var rowErr *trade.RowValidationError
		if errors.As(err, &rowErr) {
			s.logger.Debug("Row commit rejected",
				zap.String("document_id", docID.String()),
				zap.String("line_id", lineID.String()),
				zap.String("field", string(rowErr.Field)),
			)
		}
		return nil, err
	}
	return &CommitResult{CommittedLineID: lineID, NextLineID: next}, nil
}

// Blur moves focus outside the grid
func (s *Service) Blur(docID uuid.UUID) error {
	d, err := s.registry.get(docID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.grid.Blur()
	return nil
}

// SelectProduct resolves a product pick for a line. Catalog, batch and stock
// lookups run without holding the document; if another pick for the same
// line was issued meanwhile, the result is discarded with
// shared.ErrLookupSuperseded.
func (s *Service) SelectProduct(ctx context.Context, docID, lineID uuid.UUID, q ProductQuery) (*SelectionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OrderEntryService", "SelectProduct",
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, docID),
		telemetry.WithAttribute(telemetry.SpanAttrLineID, lineID))
	defer span.End()

	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if _, ok := d.grid.Line(lineID); !ok {
		d.mu.Unlock()
		return nil, shared.ErrLineNotFound
	}
	token := d.tokens.issue(lineID)
	delete(d.pending, lineID)
	d.mu.Unlock()

	product, err := s.lookups.FindProduct(ctx, q)
	if err != nil {
		if superseded := s.checkSuperseded(ctx, d, lineID, token); superseded != nil {
			return nil, superseded
		}
		return nil, err
	}

	var (
		batches []inventory.Batch
		stock   decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		batches = s.lookups.Batches(gctx, product.ID)
		return nil
	})
	g.Go(func() error {
		stock = s.lookups.StockPieces(gctx, product.ID)
		return nil
	})
	_ = g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.tokens.current(lineID, token) {
		s.superseded(ctx, docID, lineID)
		return nil, shared.ErrLookupSuperseded
	}
	if _, ok := d.grid.Line(lineID); !ok {
		return nil, shared.ErrLineNotFound
	}

	sel := s.selector.Select(product, batches)
	telemetry.SetAttributes(span, "batch_outcome", string(sel.Outcome))
	if sel.Outcome == inventory.SelectionChoiceRequired {
		picker := inventory.NewBatchPicker(sel.Candidates)
		d.pending[lineID] = &pendingChoice{product: product, picker: picker, stock: stock}
		return &SelectionResult{
			Outcome:        OutcomeBatchChoiceRequired,
			Line:           s.lineResponse(d, lineID),
			Batches:        ToBatchResponses(picker.Batches()),
			HighlightIndex: picker.Index(),
			Totals:         d.grid.Totals(),
		}, nil
	}

	return s.apply(ctx, d, lineID, trade.NewProductSelection(product, sel, stock))
}

func (s *Service) checkSuperseded(ctx context.Context, d *entryDocument, lineID uuid.UUID, token uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tokens.current(lineID, token) {
		return nil
	}
	s.superseded(ctx, d.id, lineID)
	return shared.ErrLookupSuperseded
}

func (s *Service) superseded(ctx context.Context, docID, lineID uuid.UUID) {
	s.recorder.LookupSuperseded(ctx)
	s.logger.Debug("Discarding superseded product lookup",
		zap.String("document_id", docID.String()),
		zap.String("line_id", lineID.String()),
	)
}

// apply populates a line; d.mu is held
func (s *Service) apply(ctx context.Context, d *entryDocument, lineID uuid.UUID, sel trade.ProductSelection) (*SelectionResult, error) {
	notice, err := d.grid.ApplyProduct(lineID, sel)
	if errors.Is(err, shared.ErrProductOutOfStock) {
		s.logger.Info("Product rejected, no stock available",
			zap.String("document_id", d.id.String()),
			zap.String("line_id", lineID.String()),
			zap.String("product_id", sel.Product.ID.String()),
		)
		return &SelectionResult{
			Outcome: OutcomeRejected,
			Line:    s.lineResponse(d, lineID),
			Totals:  d.grid.Totals(),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	s.noticeClamp(ctx, d.id, notice)

	return &SelectionResult{
		Outcome: OutcomeApplied,
		Line:    s.lineResponse(d, lineID),
		Notice:  notice,
		Totals:  d.grid.Totals(),
	}, nil
}

// MoveBatchHighlight moves the highlight of an open batch picker
func (s *Service) MoveBatchHighlight(docID, lineID uuid.UUID, down bool) (*BatchChoiceResponse, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[lineID]
	if !ok {
		return nil, shared.ErrNoPendingBatchChoice
	}
	if down {
		p.picker.MoveDown()
	} else {
		p.picker.MoveUp()
	}
	return &BatchChoiceResponse{
		LineID:         lineID,
		Batches:        ToBatchResponses(p.picker.Batches()),
		HighlightIndex: p.picker.Index(),
	}, nil
}

// ConfirmBatch applies the chosen batch to the line. An empty batchNumber
// confirms the highlighted batch.
func (s *Service) ConfirmBatch(ctx context.Context, docID, lineID uuid.UUID, batchNumber string) (*SelectionResult, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[lineID]
	if !ok {
		return nil, shared.ErrNoPendingBatchChoice
	}
	if batchNumber != "" && !p.picker.HighlightNumber(batchNumber) {
		return nil, shared.ErrBatchNotFound
	}
	batch, ok := p.picker.Confirm()
	if !ok {
		return nil, shared.ErrBatchNotFound
	}
	delete(d.pending, lineID)

	return s.apply(ctx, d, lineID, trade.ProductSelection{
		Product:      p.product,
		Batch:        batch,
		CapsQuantity: true,
		StockPieces:  p.stock,
	})
}

// CancelBatchChoice closes the picker and leaves the line untouched
func (s *Service) CancelBatchChoice(docID, lineID uuid.UUID) error {
	d, err := s.registry.get(docID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[lineID]
	if !ok {
		return shared.ErrNoPendingBatchChoice
	}
	p.picker.Cancel()
	delete(d.pending, lineID)
	return nil
}

// ChangeUnit switches the line's unit
func (s *Service) ChangeUnit(ctx context.Context, docID, lineID, unitOptionID uuid.UUID) (*EditResult, error) {
	return s.edit(ctx, docID, lineID, func(g *trade.OrderGrid) (*inventory.StockNotice, error) {
		return g.ChangeUnit(lineID, unitOptionID)
	})
}

// SetQuantity sets the line quantity, clamped to available stock
func (s *Service) SetQuantity(ctx context.Context, docID, lineID uuid.UUID, quantity decimal.Decimal) (*EditResult, error) {
	return s.edit(ctx, docID, lineID, func(g *trade.OrderGrid) (*inventory.StockNotice, error) {
		return g.SetQuantity(lineID, quantity)
	})
}

// SetPrice sets the unit price
func (s *Service) SetPrice(ctx context.Context, docID, lineID uuid.UUID, price decimal.Decimal) (*EditResult, error) {
	return s.edit(ctx, docID, lineID, func(g *trade.OrderGrid) (*inventory.StockNotice, error) {
		return nil, g.SetPrice(lineID, price)
	})
}

// SetDiscountPercent sets the discount as a percentage
func (s *Service) SetDiscountPercent(ctx context.Context, docID, lineID uuid.UUID, percent decimal.Decimal) (*EditResult, error) {
	return s.edit(ctx, docID, lineID, func(g *trade.OrderGrid) (*inventory.StockNotice, error) {
		return nil, g.SetDiscountPercent(lineID, percent)
	})
}

// SetDiscountAmount sets the discount as an amount
func (s *Service) SetDiscountAmount(ctx context.Context, docID, lineID uuid.UUID, amount decimal.Decimal) (*EditResult, error) {
	return s.edit(ctx, docID, lineID, func(g *trade.OrderGrid) (*inventory.StockNotice, error) {
		return nil, g.SetDiscountAmount(lineID, amount)
	})
}

func (s *Service) edit(ctx context.Context, docID, lineID uuid.UUID, fn func(*trade.OrderGrid) (*inventory.StockNotice, error)) (*EditResult, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	notice, err := fn(d.grid)
	if err != nil {
		return nil, err
	}
	s.noticeClamp(ctx, d.id, notice)
	return &EditResult{
		Line:   s.lineResponse(d, lineID),
		Notice: notice,
		Totals: d.grid.Totals(),
	}, nil
}

func (s *Service) noticeClamp(ctx context.Context, docID uuid.UUID, notice *inventory.StockNotice) {
	if notice == nil {
		return
	}
	s.recorder.StockClamped(ctx)
	s.logger.Info("Quantity clamped to available stock",
		zap.String("document_id", docID.String()),
		zap.String("line_id", notice.LineID.String()),
		zap.String("requested", notice.Requested.String()),
		zap.String("allowed", notice.Allowed.String()),
	)
}

// UpdateSettings changes tax mode, VAT applicability or rate type and
// recomputes every line
func (s *Service) UpdateSettings(docID uuid.UUID, update SettingsUpdate) (*DocumentResponse, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if update.TaxMode != nil {
		if err := d.grid.SetTaxMode(*update.TaxMode); err != nil {
			return nil, err
		}
	}
	if update.VATApplies != nil {
		d.grid.SetVATApplies(*update.VATApplies)
	}
	if update.RateType != nil {
		if err := d.grid.SetRateType(*update.RateType); err != nil {
			return nil, err
		}
	}
	return s.documentResponse(d), nil
}

// SearchProducts runs a free-text catalog search
func (s *Service) SearchProducts(ctx context.Context, text string, limit int) []ProductResponse {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	return ToProductResponses(s.lookups.Search(ctx, text, limit))
}

// HighlightProduct notes the product under the cursor of a product list;
// its stock is prefetched into the cache once the highlight settles
func (s *Service) HighlightProduct(productID uuid.UUID) {
	s.prefetcher.Highlight(productID)
}

// CommittedLines returns the committed lines of a document
func (s *Service) CommittedLines(docID uuid.UUID) ([]trade.LineSummary, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.grid.CommittedLines(), nil
}

// LoadLines replaces the lines of a document with saved ones for editing
func (s *Service) LoadLines(ctx context.Context, docID uuid.UUID, saved []SavedLine) (*DocumentResponse, error) {
	d, err := s.registry.get(docID)
	if err != nil {
		return nil, err
	}

	lines := make([]trade.LineItem, 0, len(saved))
	for i, sl := range saved {
		product, err := s.lookups.FindProduct(ctx, ProductQuery{ID: sl.ProductID})
		if err != nil {
			return nil, fmt.Errorf("saved line %d: %w", i+1, err)
		}
		line := trade.LineItem{
			ID:              uuid.New(),
			Product:         product,
			ChosenUnitID:    sl.UnitOptionID,
			BatchNumber:     sl.BatchNumber,
			Quantity:        sl.Quantity,
			Price:           sl.Price,
			DiscountPercent: sl.DiscountPercent,
			DiscountSource:  trade.DiscountFromPercent,
			BaseStockPieces: s.lookups.StockPieces(ctx, product.ID),
		}
		if sl.BatchNumber != "" {
			for _, b := range s.lookups.Batches(ctx, product.ID) {
				if b.BatchNumber == sl.BatchNumber {
					line.Batch = b.Clone()
					line.BatchMaxPieces = decimal.NewNullDecimal(b.Quantity)
					break
				}
			}
		}
		lines = append(lines, line)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens.reset()
	d.pending = make(map[uuid.UUID]*pendingChoice)
	d.grid.LoadLines(lines)
	return s.documentResponse(d), nil
}

// documentResponse builds the document view; d.mu is held
func (s *Service) documentResponse(d *entryDocument) *DocumentResponse {
	lines := d.grid.Lines()
	resp := &DocumentResponse{
		ID:       d.id,
		Settings: ToSettingsResponse(d.grid.Settings()),
		Lines:    make([]LineResponse, 0, len(lines)),
		Totals:   d.grid.Totals(),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, ToLineResponse(l, s.maxQuantity(d, l)))
		if _, ok := d.pending[l.ID]; ok {
			resp.PendingBatchChoice = append(resp.PendingBatchChoice, l.ID)
		}
	}
	if focused := d.grid.FocusedLineID(); focused != uuid.Nil {
		resp.FocusedLineID = &focused
	}
	return resp
}

// lineResponse builds one line view; d.mu is held
func (s *Service) lineResponse(d *entryDocument, lineID uuid.UUID) LineResponse {
	l, ok := d.grid.Line(lineID)
	if !ok {
		return LineResponse{ID: lineID}
	}
	return ToLineResponse(l, s.maxQuantity(d, l))
}

func (s *Service) maxQuantity(d *entryDocument, l trade.LineItem) *decimal.Decimal {
	if !l.HasProduct() {
		return nil
	}
	q, err := d.grid.MaxQuantity(l.ID)
	if err != nil {
		return nil
	}
	return &q
}
