package inventory

import (
	"time"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Batch is a tracked lot of stock for a product.
// Quantity is expressed in base-unit pieces.
type Batch struct {
	ID             uuid.UUID
	ProductID      uuid.UUID
	BatchNumber    string
	Quantity       decimal.Decimal
	PurchasePrice  decimal.Decimal
	RetailPrice    decimal.Decimal
	WholesalePrice decimal.Decimal
	ExpiryDate     *time.Time
	// Synthetic marks a batch averaged from several legacy batches of a
	// product that is not batch-tracked. It carries prices only.
	Synthetic bool
}

// PriceFor returns the batch price field for the rate type, zero when the
// batch has no field for it. Safe on a nil receiver.
func (b *Batch) PriceFor(rate catalog.RateType) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	switch rate {
	case catalog.RateTypeRetail:
		return b.RetailPrice
	case catalog.RateTypeWholesale:
		return b.WholesalePrice
	case catalog.RateTypePurchase:
		return b.PurchasePrice
	}
	return decimal.Zero
}

// IsExpired returns true if the batch has expired as of now
func (b *Batch) IsExpired(now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(now)
}

// DaysUntilExpiry returns the number of days until expiry, -1 if no expiry date
func (b *Batch) DaysUntilExpiry(now time.Time) int {
	if b.ExpiryDate == nil {
		return -1
	}
	return int(b.ExpiryDate.Sub(now).Hours() / 24)
}

// Clone returns a deep copy
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	c := *b
	if b.ExpiryDate != nil {
		expiry := *b.ExpiryDate
		c.ExpiryDate = &expiry
	}
	return &c
}
