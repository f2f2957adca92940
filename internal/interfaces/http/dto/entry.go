package dto

import "github.com/shopspring/decimal"

// CreateDocumentRequest opens a new order entry document
type CreateDocumentRequest struct {
	Kind       string  `json:"kind" binding:"required,oneof=sale quotation purchase_return"`
	TaxMode    *string `json:"tax_mode" binding:"omitempty,oneof=inclusive exclusive"`
	VATApplies *bool   `json:"vat_applies"`
	RateType   *string `json:"rate_type" binding:"omitempty,oneof=retail wholesale special1 special2 purchase"`
}

// UpdateSettingsRequest changes document settings; absent fields are kept
type UpdateSettingsRequest struct {
	TaxMode    *string `json:"tax_mode" binding:"omitempty,oneof=inclusive exclusive"`
	VATApplies *bool   `json:"vat_applies"`
	RateType   *string `json:"rate_type" binding:"omitempty,oneof=retail wholesale special1 special2 purchase"`
}

// SelectProductRequest picks a product for a line. Exactly which field is
// used follows the order product_id, code, scan_code, text.
type SelectProductRequest struct {
	ProductID string `json:"product_id" binding:"omitempty,uuid"`
	Code      string `json:"code" binding:"omitempty,max=50"`
	ScanCode  string `json:"scan_code" binding:"omitempty,max=50"`
	Text      string `json:"text" binding:"omitempty,max=200"`
}

// MoveHighlightRequest moves the batch picker highlight
type MoveHighlightRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

// ConfirmBatchRequest confirms a batch; an empty number confirms the highlight
type ConfirmBatchRequest struct {
	BatchNumber string `json:"batch_number" binding:"omitempty,max=50"`
}

// ChangeUnitRequest switches the line's unit
type ChangeUnitRequest struct {
	UnitOptionID string `json:"unit_option_id" binding:"required,uuid"`
}

// QuantityRequest sets a line quantity
type QuantityRequest struct {
	Quantity *decimal.Decimal `json:"quantity" binding:"required,decimal_gte0"`
}

// PriceRequest sets a line unit price
type PriceRequest struct {
	Price *decimal.Decimal `json:"price" binding:"required,decimal_gte0"`
}

// DiscountPercentRequest sets a line discount as a percentage
type DiscountPercentRequest struct {
	Percent *decimal.Decimal `json:"percent" binding:"required,decimal_gte0"`
}

// DiscountAmountRequest sets a line discount as an amount
type DiscountAmountRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required,decimal_gte0"`
}

// SearchProductsRequest is the product search query string
type SearchProductsRequest struct {
	Query string `form:"q" binding:"max=200"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// HighlightProductRequest schedules a stock prefetch for a product
type HighlightProductRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
}

// SavedLineRequest is one previously saved line to load into a document
type SavedLineRequest struct {
	ProductID       string           `json:"product_id" binding:"required,uuid"`
	UnitOptionID    string           `json:"unit_option_id" binding:"omitempty,uuid"`
	BatchNumber     string           `json:"batch_number" binding:"omitempty,max=50"`
	Quantity        *decimal.Decimal `json:"quantity" binding:"required,decimal_gte0"`
	Price           *decimal.Decimal `json:"price" binding:"required,decimal_gte0"`
	DiscountPercent *decimal.Decimal `json:"discount_percent" binding:"omitempty,decimal_gte0"`
}

// LoadLinesRequest replaces a document's lines with saved ones
type LoadLinesRequest struct {
	Lines []SavedLineRequest `json:"lines" binding:"required,dive"`
}
