package trade

import (
	"strings"

	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TaxMode tells whether entered prices already contain VAT
type TaxMode string

const (
	// TaxModeInclusive prices contain VAT; tax is extracted from the net amount
	TaxModeInclusive TaxMode = "inclusive"
	// TaxModeExclusive prices exclude VAT; tax is added on top
	TaxModeExclusive TaxMode = "exclusive"
)

// DefaultVATRatePercent is the VAT rate applied when none is configured
const DefaultVATRatePercent int64 = 5

// DefaultVATRate returns the default VAT rate as a percentage
func DefaultVATRate() decimal.Decimal {
	return decimal.NewFromInt(DefaultVATRatePercent)
}

// IsValid checks if the tax mode is known
func (m TaxMode) IsValid() bool {
	return m == TaxModeInclusive || m == TaxModeExclusive
}

// String returns the string representation of TaxMode
func (m TaxMode) String() string {
	return string(m)
}

// ParseTaxMode parses a tax mode name, case-insensitively
func ParseTaxMode(s string) (TaxMode, error) {
	m := TaxMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_TAX_MODE", "Unknown tax mode: "+s)
	}
	return m, nil
}
