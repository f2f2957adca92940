package persistence

import (
	"context"
	"errors"

	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/erp/orderentry/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements inventory.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// StockPieces returns the stock level in pieces, zero when no row exists
func (r *GormStockRepository) StockPieces(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var level models.StockLevelModel
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return level.QuantityPieces, nil
}

// SetStockPieces upserts the stock level of a product
func (r *GormStockRepository) SetStockPieces(ctx context.Context, productID uuid.UUID, pieces decimal.Decimal) error {
	level := models.StockLevelModel{ProductID: productID, QuantityPieces: pieces}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity_pieces", "updated_at"}),
	}).Create(&level).Error
}

var _ inventory.StockRepository = (*GormStockRepository)(nil)
