package trade

import (
	"time"

	"github.com/balcao/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a persisted sale header: one per client per day of trading
type Sale struct {
	shared.BaseEntity
	ClientID    uuid.UUID
	TotalAmount decimal.Decimal
	TotalProfit decimal.Decimal
	SoldAt      time.Time
}

// SaleItem is a single product line of a sale
type SaleItem struct {
	ID         uuid.UUID
	SaleID     uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
	UnitProfit decimal.Decimal
}

// NewSale creates a sale header. The ID is assigned when it is persisted.
func NewSale(clientID uuid.UUID, totalAmount, totalProfit decimal.Decimal, soldAt time.Time) (*Sale, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Sale requires a client")
	}
	if soldAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Sale requires a date")
	}
	now := time.Now()
	return &Sale{
		BaseEntity:  shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		ClientID:    clientID,
		TotalAmount: totalAmount,
		TotalProfit: totalProfit,
		SoldAt:      soldAt,
	}, nil
}

// Margin returns profit as a fraction of the amount, zero when nothing was sold
func (s *Sale) Margin() decimal.Decimal {
	if s.TotalAmount.IsZero() {
		return decimal.Zero
	}
	return s.TotalProfit.Div(s.TotalAmount)
}
