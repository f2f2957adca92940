package models

import (
	"time"

	"github.com/erp/orderentry/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBatchModel is the persistence model for the stock_batches table.
// Quantity is in base-unit pieces.
type StockBatchModel struct {
	BaseModel
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchNumber    string          `gorm:"type:varchar(50);not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RetailPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExpiryDate     *time.Time      `gorm:"type:date;index"`
}

// TableName returns the table name for GORM
func (StockBatchModel) TableName() string {
	return "stock_batches"
}

// ToDomain converts the persistence model to an inventory.Batch
func (m *StockBatchModel) ToDomain() inventory.Batch {
	return inventory.Batch{
		ID:             m.ID,
		ProductID:      m.ProductID,
		BatchNumber:    m.BatchNumber,
		Quantity:       m.Quantity,
		PurchasePrice:  m.PurchasePrice,
		RetailPrice:    m.RetailPrice,
		WholesalePrice: m.WholesalePrice,
		ExpiryDate:     m.ExpiryDate,
	}
}

// StockBatchModelFromDomain creates a persistence model from an inventory.Batch
func StockBatchModelFromDomain(b *inventory.Batch) *StockBatchModel {
	m := &StockBatchModel{
		ProductID:      b.ProductID,
		BatchNumber:    b.BatchNumber,
		Quantity:       b.Quantity,
		PurchasePrice:  b.PurchasePrice,
		RetailPrice:    b.RetailPrice,
		WholesalePrice: b.WholesalePrice,
		ExpiryDate:     b.ExpiryDate,
	}
	m.ID = b.ID
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return m
}

// StockLevelModel is the persistence model for the stock_levels table
type StockLevelModel struct {
	ProductID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuantityPieces decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (StockLevelModel) TableName() string {
	return "stock_levels"
}

// AllModels lists every model for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&ProductModel{},
		&ProductMultiUnitModel{},
		&StockBatchModel{},
		&StockLevelModel{},
	}
}
