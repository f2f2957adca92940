package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchRepository lists the batches of a product
type BatchRepository interface {
	// FindByProduct returns all batches for a product, earliest expiry first
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Batch, error)
}

// StockRepository reads current stock levels
type StockRepository interface {
	// StockPieces returns total stock for a product in base-unit pieces.
	// Products without a stock record have zero stock.
	StockPieces(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}
