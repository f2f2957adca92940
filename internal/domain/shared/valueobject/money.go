package valueobject

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places kept on every monetary amount
const MoneyScale int32 = 2

var hundred = decimal.NewFromInt(100)

// Hundred returns the constant 100 used in percentage math
func Hundred() decimal.Decimal {
	return hundred
}

// RoundMoney rounds an amount to two places, half away from zero.
// For the non-negative amounts handled by order entry this is half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// PercentOf returns pct percent of base, unrounded
func PercentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// RatioPercent returns part as a percentage of whole, unrounded.
// A zero whole yields zero.
func RatioPercent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole)
}

// InclusiveTaxPortion extracts the tax embedded in a tax-inclusive amount:
// amount * rate / (100 + rate), unrounded.
func InclusiveTaxPortion(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred.Add(rate))
}

// FirstPositive returns the first strictly positive value, or zero when none is
func FirstPositive(values ...decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if v.IsPositive() {
			return v
		}
	}
	return decimal.Zero
}
