package inventory

import (
	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SelectionOutcome is the result kind of a batch selection
type SelectionOutcome string

const (
	// SelectionNoBatch proceeds with product-level prices only
	SelectionNoBatch SelectionOutcome = "no_batch"
	// SelectionAuto selected the only batch of a batch-tracked product
	SelectionAuto SelectionOutcome = "auto"
	// SelectionMerged averaged legacy batches of a product that is not batch-tracked
	SelectionMerged SelectionOutcome = "merged"
	// SelectionChoiceRequired needs the operator to pick one of several batches
	SelectionChoiceRequired SelectionOutcome = "choice_required"
)

// BatchSelection is what BatchSelector decided for a product
type BatchSelection struct {
	Outcome    SelectionOutcome
	Batch      *Batch
	Candidates []Batch
}

// CapsQuantity reports whether the selected batch limits the line quantity.
// Merged batches only seed prices.
func (s BatchSelection) CapsQuantity() bool {
	return s.Outcome == SelectionAuto && s.Batch != nil
}

// BatchSelector decides which batch, if any, a newly chosen product uses
type BatchSelector struct{}

// NewBatchSelector creates a BatchSelector
func NewBatchSelector() *BatchSelector {
	return &BatchSelector{}
}

// Select applies the selection rules to a product and its batches
func (s *BatchSelector) Select(product *catalog.Product, batches []Batch) BatchSelection {
	if product == nil || len(batches) == 0 {
		return BatchSelection{Outcome: SelectionNoBatch}
	}
	if !product.BatchTracked {
		return BatchSelection{Outcome: SelectionMerged, Batch: MergeBatches(product.ID, batches)}
	}
	if len(batches) == 1 {
		return BatchSelection{Outcome: SelectionAuto, Batch: batches[0].Clone()}
	}
	candidates := make([]Batch, len(batches))
	copy(candidates, batches)
	return BatchSelection{Outcome: SelectionChoiceRequired, Candidates: candidates}
}

// MergeBatches synthesizes one batch from legacy batches. Quantity is the sum
// over batches with positive quantity (or over all batches if none is
// positive) and each price is the arithmetic mean over the same set, rounded
// to two places. Returns nil for an empty list.
func MergeBatches(productID uuid.UUID, batches []Batch) *Batch {
	if len(batches) == 0 {
		return nil
	}
	filtered := make([]Batch, 0, len(batches))
	for _, b := range batches {
		if b.Quantity.IsPositive() {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		filtered = batches
	}

	quantity := decimal.Zero
	purchase := decimal.Zero
	retail := decimal.Zero
	wholesale := decimal.Zero
	for _, b := range filtered {
		quantity = quantity.Add(b.Quantity)
		purchase = purchase.Add(b.PurchasePrice)
		retail = retail.Add(b.RetailPrice)
		wholesale = wholesale.Add(b.WholesalePrice)
	}
	n := decimal.NewFromInt(int64(len(filtered)))

	return &Batch{
		ProductID:      productID,
		Quantity:       quantity,
		PurchasePrice:  valueobject.RoundMoney(purchase.Div(n)),
		RetailPrice:    valueobject.RoundMoney(retail.Div(n)),
		WholesalePrice: valueobject.RoundMoney(wholesale.Div(n)),
		Synthetic:      true,
	}
}
