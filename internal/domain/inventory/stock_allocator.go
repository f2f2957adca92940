package inventory

import (
	"fmt"

	"github.com/erp/orderentry/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockNotice reports that a requested quantity was clamped to available stock.
// It is not an error: the line keeps the clamped quantity.
type StockNotice struct {
	LineID    uuid.UUID       `json:"line_id"`
	Requested decimal.Decimal `json:"requested"`
	Allowed   decimal.Decimal `json:"allowed"`
	Message   string          `json:"message"`
}

// AllocationLine is the stock-relevant view of one document line
type AllocationLine struct {
	LineID    uuid.UUID
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	// Conversion is the chosen unit's effective conversion (1 for the base unit)
	Conversion decimal.Decimal
}

// Pieces returns the line quantity in base pieces
func (l AllocationLine) Pieces() decimal.Decimal {
	return valueobject.ToPieces(l.Quantity, conversionOrOne(l.Conversion))
}

// AllocationInput describes the line being bounded and the document around it
type AllocationInput struct {
	Line            AllocationLine
	BaseStockPieces decimal.Decimal
	// BatchMaxPieces is set only when a specific batch was chosen
	BatchMaxPieces decimal.NullDecimal
	// Lines is every line of the document; the line itself and lines of
	// other products are skipped.
	Lines []AllocationLine
}

// Allocation is the bounded quantity for a line
type Allocation struct {
	Quantity    decimal.Decimal
	MaxQuantity decimal.Decimal
	CapPieces   decimal.Decimal
	Notice      *StockNotice
}

// Clamped reports whether the requested quantity was reduced
func (a Allocation) Clamped() bool {
	return a.Notice != nil
}

// StockAllocator bounds line quantities against shared stock pools
type StockAllocator struct {
	quantityScale int32
}

// StockAllocatorOption is a functional option for configuring StockAllocator
type StockAllocatorOption func(*StockAllocator)

// WithQuantityScale sets the number of decimal places max quantities are floored to
func WithQuantityScale(places int32) StockAllocatorOption {
	return func(a *StockAllocator) {
		if places >= 0 {
			a.quantityScale = places
		}
	}
}

// NewStockAllocator creates a new stock allocator
func NewStockAllocator(opts ...StockAllocatorOption) *StockAllocator {
	a := &StockAllocator{
		quantityScale: valueobject.QuantityScale,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// UsedByOthers sums the pieces held by other lines of the same product
func (a *StockAllocator) UsedByOthers(in AllocationInput) decimal.Decimal {
	used := decimal.Zero
	for _, l := range in.Lines {
		if l.LineID == in.Line.LineID || l.ProductID != in.Line.ProductID {
			continue
		}
		used = used.Add(l.Pieces())
	}
	return used
}

// CapPieces returns the pieces available to the line. A batch cap ignores
// sibling lines entirely.
func (a *StockAllocator) CapPieces(in AllocationInput) decimal.Decimal {
	if in.BatchMaxPieces.Valid {
		return in.BatchMaxPieces.Decimal
	}
	return in.BaseStockPieces.Sub(a.UsedByOthers(in))
}

// MaxQuantity returns the largest quantity of the chosen unit the line may hold
func (a *StockAllocator) MaxQuantity(in AllocationInput) decimal.Decimal {
	return a.maxQuantity(a.CapPieces(in), in.Line.Conversion)
}

func (a *StockAllocator) maxQuantity(capPieces, conversion decimal.Decimal) decimal.Decimal {
	maxQty := capPieces.Div(conversionOrOne(conversion)).RoundFloor(a.quantityScale)
	return valueobject.NonNegative(maxQty)
}

// CanSelect reports whether the product may be chosen for the line at all
func (a *StockAllocator) CanSelect(in AllocationInput) bool {
	return a.CapPieces(in).IsPositive()
}

// Allocate bounds proposed against the line's cap. Quantities above the cap
// are clamped and a notice is attached.
func (a *StockAllocator) Allocate(in AllocationInput, proposed decimal.Decimal) Allocation {
	capPieces := a.CapPieces(in)
	maxQty := a.maxQuantity(capPieces, in.Line.Conversion)
	result := Allocation{
		Quantity:    proposed,
		MaxQuantity: maxQty,
		CapPieces:   capPieces,
	}
	if proposed.GreaterThan(maxQty) {
		result.Quantity = maxQty
		result.Notice = &StockNotice{
			LineID:    in.Line.LineID,
			Requested: proposed,
			Allowed:   maxQty,
			Message:   fmt.Sprintf("Quantity exceeds available stock; limited to %s", maxQty.String()),
		}
	}
	return result
}

func conversionOrOne(c decimal.Decimal) decimal.Decimal {
	if c.IsPositive() {
		return c
	}
	return decimal.NewFromInt(1)
}
