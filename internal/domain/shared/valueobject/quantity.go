package valueobject

import "github.com/shopspring/decimal"

// QuantityScale is the precision kept for quantities and conversion results
const QuantityScale int32 = 4

// FloorQuantity rounds a quantity down to four places.
// Used for stock ceilings, which must never round above what is available.
func FloorQuantity(d decimal.Decimal) decimal.Decimal {
	return d.RoundFloor(QuantityScale)
}

// RoundQuantity rounds a quantity to four places, half away from zero
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// ToPieces converts a quantity in a unit with the given conversion factor to base pieces
func ToPieces(quantity, conversion decimal.Decimal) decimal.Decimal {
	return quantity.Mul(conversion)
}

// FromPieces converts base pieces to a quantity of a unit, floored to four places.
// A non-positive conversion yields zero.
func FromPieces(pieces, conversion decimal.Decimal) decimal.Decimal {
	if !conversion.IsPositive() {
		return decimal.Zero
	}
	return FloorQuantity(pieces.Div(conversion))
}

// NonNegative clamps d at zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
