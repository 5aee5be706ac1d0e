package models

import (
	"github.com/balcao/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product entity.
type ProductModel struct {
	BaseModel
	Name      string              `gorm:"type:varchar(200);not null;index"`
	Brand     string              `gorm:"type:varchar(100)"`
	BuyPrice  decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	SellPrice decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	Stock     int                 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Brand:      m.Brand,
		BuyPrice:   m.BuyPrice,
		SellPrice:  m.SellPrice,
		Stock:      m.Stock,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Brand = p.Brand
	m.BuyPrice = p.BuyPrice
	m.SellPrice = p.SellPrice
	m.Stock = p.Stock
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
