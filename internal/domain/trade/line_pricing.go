package trade

import (
	"github.com/erp/orderentry/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DiscountSource records which discount representation the operator edited last
type DiscountSource string

const (
	DiscountFromPercent DiscountSource = "percent"
	DiscountFromAmount  DiscountSource = "amount"
)

// PricingInput holds the figures of one line
type PricingInput struct {
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Edited          DiscountSource
	TaxMode         TaxMode
	VATApplies      bool
}

// PricingResult holds the computed figures of one line
type PricingResult struct {
	Gross           decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Net             decimal.Decimal
	VATAmount       decimal.Decimal
	Total           decimal.Decimal
}

// PricingCalculator computes gross, discount, tax and total for a line.
// All amounts round to two places, half-up.
type PricingCalculator struct {
	vatRate decimal.Decimal
}

// NewPricingCalculator creates a calculator for the given VAT percentage.
// A negative rate falls back to DefaultVATRate.
func NewPricingCalculator(vatRate decimal.Decimal) *PricingCalculator {
	if vatRate.IsNegative() {
		vatRate = DefaultVATRate()
	}
	return &PricingCalculator{vatRate: vatRate}
}

// VATRate returns the configured VAT percentage
func (c *PricingCalculator) VATRate() decimal.Decimal {
	return c.vatRate
}

// Gross returns round2(quantity * price)
func (c *PricingCalculator) Gross(quantity, price decimal.Decimal) decimal.Decimal {
	return valueobject.RoundMoney(quantity.Mul(price))
}

// DiscountAmountFor returns round2(gross * percent / 100)
func (c *PricingCalculator) DiscountAmountFor(gross, percent decimal.Decimal) decimal.Decimal {
	return valueobject.RoundMoney(valueobject.PercentOf(gross, percent))
}

// DiscountPercentFor returns round2(amount / gross * 100), or zero when gross is zero
func (c *PricingCalculator) DiscountPercentFor(gross, amount decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return valueobject.RoundMoney(valueobject.RatioPercent(amount, gross))
}

// Tax splits net into VAT and total for the tax mode
func (c *PricingCalculator) Tax(net decimal.Decimal, mode TaxMode, vatApplies bool) (vat, total decimal.Decimal) {
	if !vatApplies {
		return decimal.Zero, net
	}
	if mode == TaxModeExclusive {
		vat = valueobject.RoundMoney(valueobject.PercentOf(net, c.vatRate))
		return vat, valueobject.RoundMoney(net.Add(vat))
	}
	return valueobject.RoundMoney(valueobject.InclusiveTaxPortion(net, c.vatRate)), net
}

// Calculate runs the full line computation. The discount field named by
// in.Edited is taken as entered and the other is derived from it.
func (c *PricingCalculator) Calculate(in PricingInput) PricingResult {
	gross := c.Gross(in.Quantity, in.Price)

	percent := in.DiscountPercent
	amount := in.DiscountAmount
	if in.Edited == DiscountFromAmount {
		amount = valueobject.RoundMoney(amount)
		percent = c.DiscountPercentFor(gross, amount)
	} else {
		amount = c.DiscountAmountFor(gross, percent)
	}

	net := valueobject.RoundMoney(gross.Sub(amount))
	vat, total := c.Tax(net, in.TaxMode, in.VATApplies)

	return PricingResult{
		Gross:           gross,
		DiscountPercent: percent,
		DiscountAmount:  amount,
		Net:             net,
		VATAmount:       vat,
		Total:           total,
	}
}
