package catalog

import (
	"strings"

	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateType selects which of a product's price fields is active for a document
type RateType string

const (
	RateTypeRetail    RateType = "retail"
	RateTypeWholesale RateType = "wholesale"
	RateTypeSpecial1  RateType = "special1"
	RateTypeSpecial2  RateType = "special2"
	RateTypePurchase  RateType = "purchase"
)

// IsValid reports whether r is a known rate type
func (r RateType) IsValid() bool {
	switch r {
	case RateTypeRetail, RateTypeWholesale, RateTypeSpecial1, RateTypeSpecial2, RateTypePurchase:
		return true
	}
	return false
}

// ParseRateType parses a rate type name, case-insensitively
func ParseRateType(s string) (RateType, error) {
	r := RateType(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_RATE_TYPE", "Unknown rate type: "+s)
	}
	return r, nil
}

// Product is the read-only catalog record consumed by order entry
type Product struct {
	ID             uuid.UUID
	Code           string
	Name           string
	Barcode        string
	BaseUnit       UnitRef
	PurchasePrice  decimal.Decimal
	RetailPrice    decimal.Decimal
	WholesalePrice decimal.Decimal
	Special1Price  decimal.Decimal
	Special2Price  decimal.Decimal
	BatchTracked   bool
	MultiUnits     []MultiUnit
}

// NewProduct creates a product with zero prices
func NewProduct(code, name string, baseUnit UnitRef) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if baseUnit.IsZero() {
		return nil, shared.NewDomainError("INVALID_UNIT", "Product base unit is required")
	}
	return &Product{
		ID:             uuid.New(),
		Code:           strings.ToUpper(strings.TrimSpace(code)),
		Name:           strings.TrimSpace(name),
		BaseUnit:       baseUnit,
		PurchasePrice:  decimal.Zero,
		RetailPrice:    decimal.Zero,
		WholesalePrice: decimal.Zero,
		Special1Price:  decimal.Zero,
		Special2Price:  decimal.Zero,
	}, nil
}

// PriceFor returns the product-level price for the rate type.
// Zero means the field is unset.
func (p *Product) PriceFor(rate RateType) decimal.Decimal {
	switch rate {
	case RateTypeWholesale:
		return p.WholesalePrice
	case RateTypeSpecial1:
		return p.Special1Price
	case RateTypeSpecial2:
		return p.Special2Price
	case RateTypePurchase:
		return p.PurchasePrice
	default:
		return p.RetailPrice
	}
}

// AddMultiUnit appends a multi-unit selling mode.
// Multi-units are only offered for products that are not batch-tracked.
func (p *Product) AddMultiUnit(mu MultiUnit) error {
	if !mu.Conversion.IsPositive() {
		return shared.NewDomainError("INVALID_CONVERSION_RATE", "Conversion rate must be positive")
	}
	if mu.Unit.IsZero() {
		return shared.NewDomainError("INVALID_UNIT", "Multi-unit requires a unit")
	}
	for _, existing := range p.MultiUnits {
		if existing.ID == mu.ID {
			return shared.NewDomainError("DUPLICATE_MULTI_UNIT", "Multi-unit already exists for product")
		}
	}
	if mu.ID == uuid.Nil {
		mu.ID = uuid.New()
	}
	p.MultiUnits = append(p.MultiUnits, mu)
	return nil
}

// HasScanCode reports whether the product carries a scannable identifier
func (p *Product) HasScanCode() bool {
	return p.Barcode != ""
}

// MultiUnit is an alternate sellable packaging of a product
type MultiUnit struct {
	ID             uuid.UUID
	Unit           UnitRef
	Conversion     decimal.Decimal // base pieces per one of this unit
	WholesalePrice decimal.Decimal
	RetailPrice    decimal.Decimal
	Special1Price  decimal.Decimal
	Special2Price  decimal.Decimal
}

// PriceFor returns the multi-unit price for the rate type, falling back to
// the retail price when the rate type's field is zero or absent.
func (m MultiUnit) PriceFor(rate RateType) decimal.Decimal {
	var price decimal.Decimal
	switch rate {
	case RateTypeWholesale:
		price = m.WholesalePrice
	case RateTypeSpecial1:
		price = m.Special1Price
	case RateTypeSpecial2:
		price = m.Special2Price
	}
	if price.IsPositive() {
		return price
	}
	return m.RetailPrice
}

func validateProductCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}
