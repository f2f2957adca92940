package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/erp/orderentry/internal/domain/shared"
	"github.com/erp/orderentry/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultSearchLimit = 20

// GormCatalogRepository implements catalog.ProductRepository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) withUnits(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("MultiUnits", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	})
}

func (r *GormCatalogRepository) first(ctx context.Context, query string, arg any) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.withUnits(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a product by its ID
func (r *GormCatalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByCode finds a product by its code. Codes are stored upper-case.
func (r *GormCatalogRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	return r.first(ctx, "code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

// FindByScanCode finds a product by barcode
func (r *GormCatalogRepository) FindByScanCode(ctx context.Context, scanCode string) (*catalog.Product, error) {
	scanCode = strings.TrimSpace(scanCode)
	if scanCode == "" {
		return nil, shared.ErrNotFound
	}
	return r.first(ctx, "barcode = ?", scanCode)
}

// Search finds products whose code, name or barcode contains text, ordered by code
func (r *GormCatalogRepository) Search(ctx context.Context, text string, limit int) ([]catalog.Product, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"

	var rows []models.ProductModel
	if err := r.withUnits(ctx).
		Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ? OR LOWER(barcode) LIKE ?", pattern, pattern, pattern).
		Order("code ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products, nil
}

// Save inserts or updates a product with its multi-units. Used by seeding
// and tests; order entry itself never writes the catalog.
func (r *GormCatalogRepository) Save(ctx context.Context, p *catalog.Product) error {
	model := models.ProductModelFromDomain(p)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductMultiUnitModel{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("MultiUnits").Save(model).Error; err != nil {
			return err
		}
		if len(model.MultiUnits) == 0 {
			return nil
		}
		return tx.Create(&model.MultiUnits).Error
	})
}

var _ catalog.ProductRepository = (*GormCatalogRepository)(nil)
