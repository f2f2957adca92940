package models

import (
	"github.com/erp/orderentry/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the products table
type ProductModel struct {
	BaseModel
	Code           string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Barcode        string          `gorm:"type:varchar(50);index"`
	BaseUnitID     uuid.UUID       `gorm:"type:uuid;not null"`
	BaseUnitName   string          `gorm:"type:varchar(50)"`
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RetailPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Special1Price  decimal.Decimal `gorm:"column:special_price1;type:decimal(18,4);not null;default:0"`
	Special2Price  decimal.Decimal `gorm:"column:special_price2;type:decimal(18,4);not null;default:0"`
	BatchTracked   bool            `gorm:"not null;default:false"`

	MultiUnits []ProductMultiUnitModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a catalog.Product.
// A stored unit name means the upstream record embedded the unit.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		ID:             m.ID,
		Code:           m.Code,
		Name:           m.Name,
		Barcode:        m.Barcode,
		BaseUnit:       unitRef(m.BaseUnitID, m.BaseUnitName),
		PurchasePrice:  m.PurchasePrice,
		RetailPrice:    m.RetailPrice,
		WholesalePrice: m.WholesalePrice,
		Special1Price:  m.Special1Price,
		Special2Price:  m.Special2Price,
		BatchTracked:   m.BatchTracked,
	}
	if len(m.MultiUnits) > 0 {
		p.MultiUnits = make([]catalog.MultiUnit, 0, len(m.MultiUnits))
		for i := range m.MultiUnits {
			p.MultiUnits = append(p.MultiUnits, m.MultiUnits[i].ToDomain())
		}
	}
	return p
}

// FromDomain populates the model from a catalog.Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.Code = p.Code
	m.Name = p.Name
	m.Barcode = p.Barcode
	m.BaseUnitID = p.BaseUnit.ID()
	m.BaseUnitName = p.BaseUnit.Name()
	m.PurchasePrice = p.PurchasePrice
	m.RetailPrice = p.RetailPrice
	m.WholesalePrice = p.WholesalePrice
	m.Special1Price = p.Special1Price
	m.Special2Price = p.Special2Price
	m.BatchTracked = p.BatchTracked
	m.MultiUnits = make([]ProductMultiUnitModel, 0, len(p.MultiUnits))
	for i, mu := range p.MultiUnits {
		var um ProductMultiUnitModel
		um.FromDomain(p.ID, mu, i)
		m.MultiUnits = append(m.MultiUnits, um)
	}
}

// ProductModelFromDomain creates a new persistence model from a catalog.Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductMultiUnitModel is the persistence model for product_multi_units
type ProductMultiUnitModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitID         uuid.UUID       `gorm:"type:uuid;not null"`
	UnitName       string          `gorm:"type:varchar(50)"`
	Conversion     decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RetailPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Special1Price  decimal.Decimal `gorm:"column:special_price1;type:decimal(18,4);not null;default:0"`
	Special2Price  decimal.Decimal `gorm:"column:special_price2;type:decimal(18,4);not null;default:0"`
	SortOrder      int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductMultiUnitModel) TableName() string {
	return "product_multi_units"
}

// ToDomain converts the persistence model to a catalog.MultiUnit
func (m *ProductMultiUnitModel) ToDomain() catalog.MultiUnit {
	return catalog.MultiUnit{
		ID:             m.ID,
		Unit:           unitRef(m.UnitID, m.UnitName),
		Conversion:     m.Conversion,
		WholesalePrice: m.WholesalePrice,
		RetailPrice:    m.RetailPrice,
		Special1Price:  m.Special1Price,
		Special2Price:  m.Special2Price,
	}
}

// FromDomain populates the model from a catalog.MultiUnit at position order
func (m *ProductMultiUnitModel) FromDomain(productID uuid.UUID, mu catalog.MultiUnit, order int) {
	m.ID = mu.ID
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.ProductID = productID
	m.UnitID = mu.Unit.ID()
	m.UnitName = mu.Unit.Name()
	m.Conversion = mu.Conversion
	m.WholesalePrice = mu.WholesalePrice
	m.RetailPrice = mu.RetailPrice
	m.Special1Price = mu.Special1Price
	m.Special2Price = mu.Special2Price
	m.SortOrder = order
}

func unitRef(id uuid.UUID, name string) catalog.UnitRef {
	if name != "" {
		return catalog.NewUnitRefEmbedded(id, name)
	}
	return catalog.NewUnitRefID(id)
}
