package trade

import (
	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RowState is the edit state of a grid row
type RowState string

const (
	// RowIdle has no provisional edits
	RowIdle RowState = "idle"
	// RowEditing holds a snapshot; edits are provisional
	RowEditing RowState = "editing"
	// RowCommitted has accepted edits and no snapshot
	RowCommitted RowState = "committed"
)

// LineItem is one row of an order grid
type LineItem struct {
	ID uuid.UUID

	Product      *catalog.Product
	Units        []catalog.UnitOption
	ChosenUnitID uuid.UUID
	// Batch is the chosen batch, or the merged batch that seeded prices
	Batch       *inventory.Batch
	BatchNumber string

	Quantity        decimal.Decimal
	Price           decimal.Decimal
	Gross           decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Net             decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	DiscountSource  DiscountSource

	BaseStockPieces decimal.Decimal
	BatchMaxPieces  decimal.NullDecimal

	State    RowState
	snapshot *LineItem
}

// NewLineItem creates an empty line
func NewLineItem() *LineItem {
	l := &LineItem{ID: uuid.New()}
	l.clear()
	return l
}

// HasProduct reports whether a product was chosen
func (l *LineItem) HasProduct() bool {
	return l.Product != nil
}

// ProductID returns the product id, uuid.Nil for an empty line
func (l *LineItem) ProductID() uuid.UUID {
	if l.Product == nil {
		return uuid.Nil
	}
	return l.Product.ID
}

// ChosenUnit returns the chosen unit option
func (l *LineItem) ChosenUnit() (catalog.UnitOption, bool) {
	return catalog.FindOption(l.Units, l.ChosenUnitID)
}

// Conversion returns the chosen unit's effective conversion, 1 when none is chosen
func (l *LineItem) Conversion() decimal.Decimal {
	if u, ok := l.ChosenUnit(); ok {
		return u.EffectiveConversion()
	}
	return decimal.NewFromInt(1)
}

// HasSnapshot reports whether provisional edits can be reverted
func (l *LineItem) HasSnapshot() bool {
	return l.snapshot != nil
}

// Clone returns a deep copy without the snapshot. The product is shared
// since catalog records are read-only.
func (l *LineItem) Clone() *LineItem {
	c := *l
	c.snapshot = nil
	if l.Units != nil {
		c.Units = make([]catalog.UnitOption, len(l.Units))
		copy(c.Units, l.Units)
	}
	c.Batch = l.Batch.Clone()
	return &c
}

func (l *LineItem) allocationLine() inventory.AllocationLine {
	return inventory.AllocationLine{
		LineID:     l.ID,
		ProductID:  l.ProductID(),
		Quantity:   l.Quantity,
		Conversion: l.Conversion(),
	}
}

func (l *LineItem) pricingInput(s DocumentSettings) PricingInput {
	return PricingInput{
		Quantity:        l.Quantity,
		Price:           l.Price,
		DiscountPercent: l.DiscountPercent,
		DiscountAmount:  l.DiscountAmount,
		Edited:          l.DiscountSource,
		TaxMode:         s.TaxMode,
		VATApplies:      s.VATApplies,
	}
}

func (l *LineItem) applyPricing(r PricingResult) {
	l.Gross = r.Gross
	l.DiscountPercent = r.DiscountPercent
	l.DiscountAmount = r.DiscountAmount
	l.Net = r.Net
	l.TaxAmount = r.VATAmount
	l.Total = r.Total
}

// clear resets every field except the id
func (l *LineItem) clear() {
	*l = LineItem{
		ID:              l.ID,
		Quantity:        decimal.Zero,
		Price:           decimal.Zero,
		Gross:           decimal.Zero,
		DiscountPercent: decimal.Zero,
		DiscountAmount:  decimal.Zero,
		Net:             decimal.Zero,
		TaxAmount:       decimal.Zero,
		Total:           decimal.Zero,
		DiscountSource:  DiscountFromPercent,
		BaseStockPieces: decimal.Zero,
		State:           RowIdle,
	}
}

// LineSummary is the reducible form of a committed line
type LineSummary struct {
	LineID         uuid.UUID       `json:"line_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	UnitID         uuid.UUID       `json:"unit_id"`
	MultiUnitID    *uuid.UUID      `json:"multi_unit_id,omitempty"`
	BatchNumber    string          `json:"batch_number,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Summary reduces the line for the surrounding document
func (l *LineItem) Summary() LineSummary {
	s := LineSummary{
		LineID:         l.ID,
		ProductID:      l.ProductID(),
		BatchNumber:    l.BatchNumber,
		Quantity:       l.Quantity,
		Price:          l.Price,
		DiscountAmount: l.DiscountAmount,
		TaxAmount:      l.TaxAmount,
		Total:          l.Total,
	}
	if u, ok := l.ChosenUnit(); ok {
		s.UnitID = u.UnitID
		if u.IsMultiUnit {
			id := u.ID
			s.MultiUnitID = &id
		}
	}
	return s
}
