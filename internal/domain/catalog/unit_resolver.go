package catalog

import (
	"github.com/erp/orderentry/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchPrices exposes the price fields of a chosen batch. PriceFor returns
// zero for rate types the batch has no field for.
type BatchPrices interface {
	PriceFor(rate RateType) decimal.Decimal
}

// UnitOption is one transactable unit for a line
type UnitOption struct {
	// ID is the base unit id for the base option and the multi-unit id otherwise
	ID          uuid.UUID
	UnitID      uuid.UUID
	Name        string
	Conversion  decimal.Decimal
	IsMultiUnit bool
	Price       decimal.Decimal
}

// EffectiveConversion is the conversion factor used in stock math
func (o UnitOption) EffectiveConversion() decimal.Decimal {
	if o.IsMultiUnit {
		return o.Conversion
	}
	return decimal.NewFromInt(1)
}

// ToPieces converts a quantity of this unit to base pieces
func (o UnitOption) ToPieces(quantity decimal.Decimal) decimal.Decimal {
	return valueobject.ToPieces(quantity, o.EffectiveConversion())
}

// FindOption looks up an option by id
func FindOption(options []UnitOption, id uuid.UUID) (UnitOption, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return UnitOption{}, false
}

// UnitResolver builds the transactable unit list for a product
type UnitResolver struct{}

// NewUnitResolver creates a UnitResolver
func NewUnitResolver() *UnitResolver {
	return &UnitResolver{}
}

// Resolve returns the unit options for p under rate, base unit first.
// batch may be nil; when set its matching price field takes precedence for
// the base unit.
func (r *UnitResolver) Resolve(p *Product, rate RateType, batch BatchPrices) []UnitOption {
	if p == nil {
		return nil
	}
	options := make([]UnitOption, 0, 1+len(p.MultiUnits))
	options = append(options, UnitOption{
		ID:         p.BaseUnit.ID(),
		UnitID:     p.BaseUnit.ID(),
		Name:       p.BaseUnit.Name(),
		Conversion: decimal.NewFromInt(1),
		Price:      r.BasePrice(p, rate, batch),
	})
	if p.BatchTracked {
		return options
	}
	for _, mu := range p.MultiUnits {
		options = append(options, UnitOption{
			ID:          mu.ID,
			UnitID:      mu.Unit.ID(),
			Name:        mu.Unit.Name(),
			Conversion:  mu.Conversion,
			IsMultiUnit: true,
			Price:       mu.PriceFor(rate),
		})
	}
	return options
}

// BasePrice resolves the base unit price: batch field, then product field, then zero
func (r *UnitResolver) BasePrice(p *Product, rate RateType, batch BatchPrices) decimal.Decimal {
	var fromBatch decimal.Decimal
	if batch != nil {
		fromBatch = batch.PriceFor(rate)
	}
	return valueobject.FirstPositive(fromBatch, p.PriceFor(rate))
}
