package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindAll returns every product in the catalog
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByNameInsensitive returns products whose trimmed name equals name, ignoring case
	FindByNameInsensitive(ctx context.Context, name string) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateStockAndPrice sets stock and sell price for a single product
	UpdateStockAndPrice(ctx context.Context, id uuid.UUID, stock int, sellPrice decimal.Decimal) error
}
