package trade

import (
	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/erp/orderentry/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSelection is everything needed to populate a line from a product pick
type ProductSelection struct {
	Product *catalog.Product
	// Batch is the chosen batch or a merged batch seeding prices
	Batch *inventory.Batch
	// CapsQuantity is true when Batch is a specific lot whose quantity caps the line
	CapsQuantity bool
	// StockPieces is total stock for the product in base pieces
	StockPieces decimal.Decimal
}

// NewProductSelection builds a selection from a BatchSelector decision
func NewProductSelection(p *catalog.Product, sel inventory.BatchSelection, stockPieces decimal.Decimal) ProductSelection {
	return ProductSelection{
		Product:      p,
		Batch:        sel.Batch,
		CapsQuantity: sel.CapsQuantity(),
		StockPieces:  stockPieces,
	}
}

// Totals are the document-level aggregates of all lines with a product
type Totals struct {
	Gross      decimal.Decimal `json:"gross"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	Net        decimal.Decimal `json:"net"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// OrderGrid is the line collection of one document. It is not safe for
// concurrent use; callers serialize access per document.
type OrderGrid struct {
	settings  DocumentSettings
	lines     []*LineItem
	session   RowEditSession
	pricing   *PricingCalculator
	units     *catalog.UnitResolver
	allocator *inventory.StockAllocator
}

// GridOption is a functional option for configuring OrderGrid
type GridOption func(*OrderGrid)

// WithStockAllocator sets the allocator used to bound quantities
func WithStockAllocator(a *inventory.StockAllocator) GridOption {
	return func(g *OrderGrid) {
		if a != nil {
			g.allocator = a
		}
	}
}

// WithUnitResolver sets the resolver used to build unit options
func WithUnitResolver(r *catalog.UnitResolver) GridOption {
	return func(g *OrderGrid) {
		if r != nil {
			g.units = r
		}
	}
}

// NewOrderGrid creates a grid holding one empty line
func NewOrderGrid(settings DocumentSettings, opts ...GridOption) *OrderGrid {
	g := &OrderGrid{
		settings:  settings,
		lines:     []*LineItem{NewLineItem()},
		pricing:   NewPricingCalculator(settings.VATRate),
		units:     catalog.NewUnitResolver(),
		allocator: inventory.NewStockAllocator(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Settings returns the document settings
func (g *OrderGrid) Settings() DocumentSettings {
	return g.settings
}

// Lines returns copies of all lines in display order
func (g *OrderGrid) Lines() []LineItem {
	out := make([]LineItem, 0, len(g.lines))
	for _, l := range g.lines {
		c := l.Clone()
		out = append(out, *c)
	}
	return out
}

// Line returns a copy of one line
func (g *OrderGrid) Line(id uuid.UUID) (LineItem, bool) {
	l, _, err := g.find(id)
	if err != nil {
		return LineItem{}, false
	}
	return *l.Clone(), true
}

// FocusedLineID returns the focused line id, uuid.Nil when focus is outside the grid
func (g *OrderGrid) FocusedLineID() uuid.UUID {
	if f := g.session.Focused(); f != nil {
		return f.ID
	}
	return uuid.Nil
}

// AddLine appends an empty line and returns its id
func (g *OrderGrid) AddLine() uuid.UUID {
	l := NewLineItem()
	g.lines = append(g.lines, l)
	return l.ID
}

// RemoveLine removes a line. The last remaining line is reset to empty instead.
func (g *OrderGrid) RemoveLine(id uuid.UUID) error {
	l, idx, err := g.find(id)
	if err != nil {
		return err
	}
	if len(g.lines) == 1 {
		l.clear()
		return nil
	}
	g.session.Forget(l)
	g.lines = append(g.lines[:idx], g.lines[idx+1:]...)
	return nil
}

// ApplyProduct populates a line from a product pick. The default quantity of
// one is capped by available stock; a clamp is reported through the returned
// notice. When no stock is available at all the line is cleared and
// ErrProductOutOfStock is returned.
func (g *OrderGrid) ApplyProduct(id uuid.UUID, sel ProductSelection) (*inventory.StockNotice, error) {
	l, _, err := g.find(id)
	if err != nil {
		return nil, err
	}
	if sel.Product == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product is required")
	}
	g.session.Enter(l)

	units := g.units.Resolve(sel.Product, g.settings.RateType, batchPrices(sel.Batch))
	chosen := units[0]

	var maxPieces decimal.NullDecimal
	batchNumber := ""
	if sel.CapsQuantity && sel.Batch != nil {
		maxPieces = decimal.NewNullDecimal(sel.Batch.Quantity)
		batchNumber = sel.Batch.BatchNumber
	}

	in := inventory.AllocationInput{
		Line: inventory.AllocationLine{
			LineID:     l.ID,
			ProductID:  sel.Product.ID,
			Conversion: chosen.EffectiveConversion(),
		},
		BaseStockPieces: sel.StockPieces,
		BatchMaxPieces:  maxPieces,
		Lines:           g.allocationLines(),
	}
	if !g.allocator.CanSelect(in) {
		l.clear()
		return nil, shared.ErrProductOutOfStock
	}
	alloc := g.allocator.Allocate(in, decimal.NewFromInt(1))

	l.clear()
	l.Product = sel.Product
	l.Units = units
	l.ChosenUnitID = chosen.ID
	l.Batch = sel.Batch.Clone()
	l.BatchNumber = batchNumber
	l.Quantity = alloc.Quantity
	l.Price = chosen.Price
	l.BaseStockPieces = sel.StockPieces
	l.BatchMaxPieces = maxPieces
	g.recompute(l)
	g.session.Resnapshot(l)

	return alloc.Notice, nil
}

// ChangeUnit switches the line to another unit option, repricing it and
// re-bounding its quantity
func (g *OrderGrid) ChangeUnit(id, unitOptionID uuid.UUID) (*inventory.StockNotice, error) {
	l, err := g.productLine(id)
	if err != nil {
		return nil, err
	}
	opt, ok := catalog.FindOption(l.Units, unitOptionID)
	if !ok {
		return nil, shared.ErrUnitNotFound
	}
	g.session.Enter(l)

	l.ChosenUnitID = opt.ID
	l.Price = opt.Price
	notice := g.bound(l, l.Quantity)
	g.recompute(l)
	return notice, nil
}

// SetQuantity sets the quantity in the chosen unit, clamped to available stock
func (g *OrderGrid) SetQuantity(id uuid.UUID, quantity decimal.Decimal) (*inventory.StockNotice, error) {
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	l, err := g.productLine(id)
	if err != nil {
		return nil, err
	}
	g.session.Enter(l)

	notice := g.bound(l, quantity)
	g.recompute(l)
	return notice, nil
}

// SetPrice sets the unit price
func (g *OrderGrid) SetPrice(id uuid.UUID, price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	l, err := g.productLine(id)
	if err != nil {
		return err
	}
	g.session.Enter(l)

	l.Price = price
	g.recompute(l)
	return nil
}

// SetDiscountPercent sets the discount as a percentage; the amount follows
func (g *OrderGrid) SetDiscountPercent(id uuid.UUID, percent decimal.Decimal) error {
	if percent.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if percent.GreaterThan(valueobject.Hundred()) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed 100%")
	}
	l, err := g.productLine(id)
	if err != nil {
		return err
	}
	g.session.Enter(l)

	l.DiscountPercent = percent
	l.DiscountSource = DiscountFromPercent
	g.recompute(l)
	return nil
}

// SetDiscountAmount sets the discount as an amount; the percentage follows
func (g *OrderGrid) SetDiscountAmount(id uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	l, err := g.productLine(id)
	if err != nil {
		return err
	}
	if valueobject.RoundMoney(amount).GreaterThan(g.pricing.Gross(l.Quantity, l.Price)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the line gross")
	}
	g.session.Enter(l)

	l.DiscountAmount = amount
	l.DiscountSource = DiscountFromAmount
	g.recompute(l)
	return nil
}

// MaxQuantity returns the largest quantity the line may currently hold
func (g *OrderGrid) MaxQuantity(id uuid.UUID) (decimal.Decimal, error) {
	l, err := g.productLine(id)
	if err != nil {
		return decimal.Zero, err
	}
	return g.allocator.MaxQuantity(g.allocationInput(l)), nil
}

// SetTaxMode changes the tax mode and recomputes every line
func (g *OrderGrid) SetTaxMode(mode TaxMode) error {
	if !mode.IsValid() {
		return shared.NewDomainError("INVALID_TAX_MODE", "Tax mode is invalid")
	}
	g.settings.TaxMode = mode
	g.RecomputeAll()
	return nil
}

// SetVATApplies toggles VAT and recomputes every line
func (g *OrderGrid) SetVATApplies(applies bool) {
	g.settings.VATApplies = applies
	g.RecomputeAll()
}

// SetRateType switches the active price field. Every line's unit options are
// rebuilt and its price reset to the chosen unit's new price; the chosen unit
// itself is kept.
func (g *OrderGrid) SetRateType(rate catalog.RateType) error {
	if !rate.IsValid() {
		return shared.NewDomainError("INVALID_RATE_TYPE", "Rate type is invalid")
	}
	g.settings.RateType = rate
	for _, l := range g.lines {
		g.reprice(l)
		if l.snapshot != nil {
			g.reprice(l.snapshot)
		}
	}
	return nil
}

// RecomputeAll re-runs pricing for every line
func (g *OrderGrid) RecomputeAll() {
	for _, l := range g.lines {
		g.recompute(l)
		if l.snapshot != nil {
			g.recompute(l.snapshot)
		}
	}
}

// FocusRow moves focus into a row
func (g *OrderGrid) FocusRow(id uuid.UUID) error {
	l, _, err := g.find(id)
	if err != nil {
		return err
	}
	g.session.Enter(l)
	return nil
}

// Commit validates and accepts a row, then moves focus to the next row,
// appending one if the committed row was last. Returns the next row's id.
// A *RowValidationError names the field that needs attention.
func (g *OrderGrid) Commit(id uuid.UUID) (uuid.UUID, error) {
	l, idx, err := g.find(id)
	if err != nil {
		return uuid.Nil, err
	}
	g.session.Enter(l)
	if err := g.session.Commit(l); err != nil {
		return uuid.Nil, err
	}
	if idx == len(g.lines)-1 {
		g.AddLine()
	}
	next := g.lines[idx+1]
	g.session.Enter(next)
	return next.ID, nil
}

// Blur moves focus outside the grid, reverting a row left in Editing
func (g *OrderGrid) Blur() {
	g.session.Leave()
}

// CommittedLines returns the reducible form of every committed line with a product
func (g *OrderGrid) CommittedLines() []LineSummary {
	out := make([]LineSummary, 0, len(g.lines))
	for _, l := range g.lines {
		if l.HasProduct() && l.State == RowCommitted {
			out = append(out, l.Summary())
		}
	}
	return out
}

// Totals sums every line that has a product
func (g *OrderGrid) Totals() Totals {
	t := Totals{
		Gross:      decimal.Zero,
		Discount:   decimal.Zero,
		Tax:        decimal.Zero,
		Net:        decimal.Zero,
		GrandTotal: decimal.Zero,
	}
	for _, l := range g.lines {
		if !l.HasProduct() {
			continue
		}
		t.Gross = t.Gross.Add(l.Gross)
		t.Discount = t.Discount.Add(l.DiscountAmount)
		t.Tax = t.Tax.Add(l.TaxAmount)
		t.Net = t.Net.Add(l.Net)
		t.GrandTotal = t.GrandTotal.Add(l.Total)
	}
	return t
}

// LoadLines replaces every line, as when a saved document is opened for
// editing. Loaded rows with a product start Committed. Missing unit options
// are rebuilt from the product.
func (g *OrderGrid) LoadLines(lines []LineItem) {
	g.session = RowEditSession{}
	g.lines = make([]*LineItem, 0, len(lines)+1)
	for i := range lines {
		l := lines[i].Clone()
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		if l.DiscountSource == "" {
			l.DiscountSource = DiscountFromPercent
		}
		l.State = RowIdle
		if l.HasProduct() {
			if len(l.Units) == 0 {
				l.Units = g.units.Resolve(l.Product, g.settings.RateType, batchPrices(l.Batch))
			}
			if _, ok := l.ChosenUnit(); !ok {
				l.ChosenUnitID = l.Units[0].ID
			}
			l.State = RowCommitted
			g.recompute(l)
		}
		g.lines = append(g.lines, l)
	}
	if len(g.lines) == 0 {
		g.lines = append(g.lines, NewLineItem())
	}
}

func (g *OrderGrid) find(id uuid.UUID) (*LineItem, int, error) {
	for i, l := range g.lines {
		if l.ID == id {
			return l, i, nil
		}
	}
	return nil, -1, shared.ErrLineNotFound
}

func (g *OrderGrid) productLine(id uuid.UUID) (*LineItem, error) {
	l, _, err := g.find(id)
	if err != nil {
		return nil, err
	}
	if !l.HasProduct() {
		return nil, shared.ErrNoProduct
	}
	return l, nil
}

func (g *OrderGrid) allocationLines() []inventory.AllocationLine {
	out := make([]inventory.AllocationLine, 0, len(g.lines))
	for _, l := range g.lines {
		if l.HasProduct() {
			out = append(out, l.allocationLine())
		}
	}
	return out
}

func (g *OrderGrid) allocationInput(l *LineItem) inventory.AllocationInput {
	return inventory.AllocationInput{
		Line:            l.allocationLine(),
		BaseStockPieces: l.BaseStockPieces,
		BatchMaxPieces:  l.BatchMaxPieces,
		Lines:           g.allocationLines(),
	}
}

// bound clamps proposed against the line's stock cap and stores the result
func (g *OrderGrid) bound(l *LineItem, proposed decimal.Decimal) *inventory.StockNotice {
	alloc := g.allocator.Allocate(g.allocationInput(l), proposed)
	l.Quantity = alloc.Quantity
	return alloc.Notice
}

func (g *OrderGrid) recompute(l *LineItem) {
	if !l.HasProduct() {
		return
	}
	l.applyPricing(g.pricing.Calculate(l.pricingInput(g.settings)))
}

func (g *OrderGrid) reprice(l *LineItem) {
	if !l.HasProduct() {
		return
	}
	l.Units = g.units.Resolve(l.Product, g.settings.RateType, batchPrices(l.Batch))
	opt, ok := l.ChosenUnit()
	if !ok {
		opt = l.Units[0]
		l.ChosenUnitID = opt.ID
	}
	l.Price = opt.Price
	g.recompute(l)
}

func batchPrices(b *inventory.Batch) catalog.BatchPrices {
	if b == nil {
		return nil
	}
	return b
}
