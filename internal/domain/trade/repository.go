package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// CreateSale inserts a sale header and assigns its ID
	CreateSale(ctx context.Context, sale *Sale) error

	// CreateItems inserts the lines of an existing sale
	CreateItems(ctx context.Context, saleID uuid.UUID, items []SaleItem) error

	// FindBetween returns sales sold in [from, to)
	FindBetween(ctx context.Context, from, to time.Time) ([]Sale, error)

	// DeleteAll removes every sale line and then every sale
	DeleteAll(ctx context.Context) (DeleteResult, error)

	// TopProducts aggregates sale lines of sales sold in [from, to) by product
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
}

// DeleteResult reports how many rows a DeleteAll removed
type DeleteResult struct {
	ItemsDeleted int64 `json:"items_deleted"`
	SalesDeleted int64 `json:"sales_deleted"`
}

// ProductSales summarizes sales of one product over a period
type ProductSales struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
	Profit      decimal.Decimal `json:"profit"`
}
