package persistence

import (
	"context"

	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/erp/orderentry/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBatchRepository implements inventory.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByProduct returns the product's batches, earliest expiry first and
// batches without expiry last
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Batch, error) {
	var rows []models.StockBatchModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("expiry_date IS NULL ASC, expiry_date ASC, batch_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	batches := make([]inventory.Batch, 0, len(rows))
	for i := range rows {
		batches = append(batches, rows[i].ToDomain())
	}
	return batches, nil
}

// Save inserts or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, b *inventory.Batch) error {
	return r.db.WithContext(ctx).Save(models.StockBatchModelFromDomain(b)).Error
}

var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
