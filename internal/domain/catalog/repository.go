package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the catalog lookups order entry depends on.
// Lookups return shared.ErrNotFound when nothing matches.
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its exact code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindByScanCode finds a product by barcode or serial
	FindByScanCode(ctx context.Context, scanCode string) (*Product, error)

	// Search finds products whose code, name or barcode contains text
	Search(ctx context.Context, text string, limit int) ([]Product, error)
}
