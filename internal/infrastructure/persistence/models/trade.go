package models

import (
	"time"

	"github.com/balcao/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for a sale header.
type SaleModel struct {
	BaseModel
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalProfit decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SoldAt      time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *trade.Sale {
	return &trade.Sale{
		BaseEntity:  m.BaseModel.ToDomain(),
		ClientID:    m.ClientID,
		TotalAmount: m.TotalAmount,
		TotalProfit: m.TotalProfit,
		SoldAt:      m.SoldAt,
	}
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ClientID = s.ClientID
	m.TotalAmount = s.TotalAmount
	m.TotalProfit = s.TotalProfit
	m.SoldAt = s.SoldAt
}

// SaleItemModel is the persistence model for a sale line.
type SaleItemModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitProfit decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() trade.SaleItem {
	return trade.SaleItem{
		ID:         m.ID,
		SaleID:     m.SaleID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		UnitProfit: m.UnitProfit,
	}
}

// SaleItemModelFromDomain creates a persistence model for a line of saleID.
func SaleItemModelFromDomain(saleID uuid.UUID, item trade.SaleItem) *SaleItemModel {
	return &SaleItemModel{
		ID:         item.ID,
		SaleID:     saleID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
		UnitPrice:  item.UnitPrice,
		UnitProfit: item.UnitProfit,
	}
}
