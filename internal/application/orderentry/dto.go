package orderentry

import (
	"time"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/erp/orderentry/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SelectionOutcome is how a product pick ended
type SelectionOutcome string

const (
	// OutcomeApplied means the line was populated
	OutcomeApplied SelectionOutcome = "applied"
	// OutcomeBatchChoiceRequired means a batch picker was opened; the line is untouched
	OutcomeBatchChoiceRequired SelectionOutcome = "batch_choice_required"
	// OutcomeRejected means the product has no available stock; the line was cleared
	OutcomeRejected SelectionOutcome = "rejected"
)

// SettingsUpdate changes document settings. Nil fields are left as they are.
type SettingsUpdate struct {
	TaxMode    *trade.TaxMode
	VATApplies *bool
	RateType   *catalog.RateType
}

// SavedLine is a persisted line loaded back for editing
type SavedLine struct {
	ProductID       uuid.UUID
	UnitOptionID    uuid.UUID
	BatchNumber     string
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	DiscountPercent decimal.Decimal
}

// SettingsResponse represents document settings in API responses
type SettingsResponse struct {
	Kind       trade.DocumentKind `json:"kind"`
	TaxMode    trade.TaxMode      `json:"tax_mode"`
	VATApplies bool               `json:"vat_applies"`
	RateType   catalog.RateType   `json:"rate_type"`
	VATRate    decimal.Decimal    `json:"vat_rate"`
}

// UnitOptionResponse represents a selectable unit of a line
type UnitOptionResponse struct {
	ID          uuid.UUID       `json:"id"`
	UnitID      uuid.UUID       `json:"unit_id"`
	Name        string          `json:"name"`
	Conversion  decimal.Decimal `json:"conversion"`
	IsMultiUnit bool            `json:"is_multi_unit"`
	Price       decimal.Decimal `json:"price"`
}

// LineResponse represents one grid line in API responses
type LineResponse struct {
	ID              uuid.UUID            `json:"id"`
	State           trade.RowState       `json:"state"`
	ProductID       *uuid.UUID           `json:"product_id,omitempty"`
	ProductCode     string               `json:"product_code,omitempty"`
	ProductName     string               `json:"product_name,omitempty"`
	Units           []UnitOptionResponse `json:"units,omitempty"`
	ChosenUnitID    *uuid.UUID           `json:"chosen_unit_id,omitempty"`
	BatchNumber     string               `json:"batch_number,omitempty"`
	Quantity        decimal.Decimal      `json:"quantity"`
	MaxQuantity     *decimal.Decimal     `json:"max_quantity,omitempty"`
	Price           decimal.Decimal      `json:"price"`
	Gross           decimal.Decimal      `json:"gross"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	DiscountAmount  decimal.Decimal      `json:"discount_amount"`
	Net             decimal.Decimal      `json:"net"`
	TaxAmount       decimal.Decimal      `json:"tax_amount"`
	Total           decimal.Decimal      `json:"total"`
}

// BatchResponse represents a batch offered to the operator
type BatchResponse struct {
	ID             uuid.UUID       `json:"id"`
	BatchNumber    string          `json:"batch_number"`
	Quantity       decimal.Decimal `json:"quantity"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
}

// DocumentResponse is the full state of an open document
type DocumentResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Settings           SettingsResponse `json:"settings"`
	Lines              []LineResponse   `json:"lines"`
	FocusedLineID      *uuid.UUID       `json:"focused_line_id,omitempty"`
	PendingBatchChoice []uuid.UUID      `json:"pending_batch_choice,omitempty"`
	Totals             trade.Totals     `json:"totals"`
}

// SelectionResult is the outcome of a product pick or batch confirmation
type SelectionResult struct {
	Outcome        SelectionOutcome       `json:"outcome"`
	Line           LineResponse           `json:"line"`
	Batches        []BatchResponse        `json:"batches,omitempty"`
	HighlightIndex int                    `json:"highlight_index"`
	Notice         *inventory.StockNotice `json:"notice,omitempty"`
	Totals         trade.Totals           `json:"totals"`
}

// BatchChoiceResponse is the state of an open batch picker
type BatchChoiceResponse struct {
	LineID         uuid.UUID       `json:"line_id"`
	Batches        []BatchResponse `json:"batches"`
	HighlightIndex int             `json:"highlight_index"`
}

// EditResult is the outcome of a field edit
type EditResult struct {
	Line   LineResponse           `json:"line"`
	Notice *inventory.StockNotice `json:"notice,omitempty"`
	Totals trade.Totals           `json:"totals"`
}

// CommitResult is the outcome of committing a row
type CommitResult struct {
	CommittedLineID uuid.UUID `json:"committed_line_id"`
	NextLineID      uuid.UUID `json:"next_line_id"`
}

// ProductResponse represents a catalog search hit
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Barcode      string          `json:"barcode,omitempty"`
	BaseUnit     catalog.UnitRef `json:"base_unit"`
	RetailPrice  decimal.Decimal `json:"retail_price"`
	BatchTracked bool            `json:"batch_tracked"`
}

// ToSettingsResponse converts document settings
func ToSettingsResponse(s trade.DocumentSettings) SettingsResponse {
	return SettingsResponse{
		Kind:       s.Kind,
		TaxMode:    s.TaxMode,
		VATApplies: s.VATApplies,
		RateType:   s.RateType,
		VATRate:    s.VATRate,
	}
}

// ToLineResponse converts a line. maxQuantity is included when non-nil.
func ToLineResponse(l trade.LineItem, maxQuantity *decimal.Decimal) LineResponse {
	resp := LineResponse{
		ID:              l.ID,
		State:           l.State,
		BatchNumber:     l.BatchNumber,
		Quantity:        l.Quantity,
		MaxQuantity:     maxQuantity,
		Price:           l.Price,
		Gross:           l.Gross,
		DiscountPercent: l.DiscountPercent,
		DiscountAmount:  l.DiscountAmount,
		Net:             l.Net,
		TaxAmount:       l.TaxAmount,
		Total:           l.Total,
	}
	if !l.HasProduct() {
		return resp
	}

	productID := l.Product.ID
	chosen := l.ChosenUnitID
	resp.ProductID = &productID
	resp.ProductCode = l.Product.Code
	resp.ProductName = l.Product.Name
	resp.ChosenUnitID = &chosen
	resp.Units = make([]UnitOptionResponse, 0, len(l.Units))
	for _, u := range l.Units {
		resp.Units = append(resp.Units, UnitOptionResponse{
			ID:          u.ID,
			UnitID:      u.UnitID,
			Name:        u.Name,
			Conversion:  u.EffectiveConversion(),
			IsMultiUnit: u.IsMultiUnit,
			Price:       u.Price,
		})
	}
	return resp
}

// ToBatchResponses converts batches
func ToBatchResponses(batches []inventory.Batch) []BatchResponse {
	out := make([]BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, BatchResponse{
			ID:             b.ID,
			BatchNumber:    b.BatchNumber,
			Quantity:       b.Quantity,
			PurchasePrice:  b.PurchasePrice,
			RetailPrice:    b.RetailPrice,
			WholesalePrice: b.WholesalePrice,
			ExpiryDate:     b.ExpiryDate,
		})
	}
	return out
}

// ToProductResponses converts search hits
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductResponse{
			ID:           p.ID,
			Code:         p.Code,
			Name:         p.Name,
			Barcode:      p.Barcode,
			BaseUnit:     p.BaseUnit,
			RetailPrice:  p.RetailPrice,
			BatchTracked: p.BatchTracked,
		})
	}
	return out
}
