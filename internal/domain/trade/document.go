package trade

import (
	"strings"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentKind is the kind of document an order grid belongs to
type DocumentKind string

const (
	DocumentKindPurchaseReturn DocumentKind = "purchase_return"
	DocumentKindQuotation      DocumentKind = "quotation"
	DocumentKindSale           DocumentKind = "sale"
)

// IsValid checks if the document kind is known
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindPurchaseReturn, DocumentKindQuotation, DocumentKindSale:
		return true
	}
	return false
}

// ParseDocumentKind parses a document kind name, case-insensitively
func ParseDocumentKind(s string) (DocumentKind, error) {
	k := DocumentKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", shared.NewDomainError("INVALID_DOCUMENT_KIND", "Unknown document kind: "+s)
	}
	return k, nil
}

// DefaultRateType returns the rate type a new document of this kind starts with
func (k DocumentKind) DefaultRateType() catalog.RateType {
	if k == DocumentKindPurchaseReturn {
		return catalog.RateTypePurchase
	}
	return catalog.RateTypeRetail
}

// DocumentSettings parameterizes the pricing of every line in a grid
type DocumentSettings struct {
	Kind       DocumentKind
	TaxMode    TaxMode
	VATApplies bool
	RateType   catalog.RateType
	VATRate    decimal.Decimal
}

// DefaultSettings returns settings for a new document of the given kind
func DefaultSettings(kind DocumentKind) DocumentSettings {
	return DocumentSettings{
		Kind:       kind,
		TaxMode:    TaxModeInclusive,
		VATApplies: true,
		RateType:   kind.DefaultRateType(),
		VATRate:    DefaultVATRate(),
	}
}

// Validate checks the settings
func (s DocumentSettings) Validate() error {
	if !s.Kind.IsValid() {
		return shared.NewDomainError("INVALID_DOCUMENT_KIND", "Document kind is invalid")
	}
	if !s.TaxMode.IsValid() {
		return shared.NewDomainError("INVALID_TAX_MODE", "Tax mode is invalid")
	}
	if !s.RateType.IsValid() {
		return shared.NewDomainError("INVALID_RATE_TYPE", "Rate type is invalid")
	}
	if s.VATRate.IsNegative() {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate cannot be negative")
	}
	return nil
}
