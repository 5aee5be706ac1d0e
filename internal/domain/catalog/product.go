package catalog

import (
	"strings"

	"github.com/balcao/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a sellable item in the shop catalog
type Product struct {
	shared.BaseEntity
	Name      string
	Brand     string
	BuyPrice  decimal.NullDecimal // unit acquisition cost, may be unknown
	SellPrice decimal.Decimal
	Stock     int
}

// NewProduct creates a new product
func NewProduct(name, brand string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Brand:      strings.TrimSpace(brand),
		SellPrice:  decimal.Zero,
	}, nil
}

// CostBasis returns the buy price, or zero when the product has none
func (p *Product) CostBasis() decimal.Decimal {
	if !p.BuyPrice.Valid {
		return decimal.Zero
	}
	return p.BuyPrice.Decimal
}

// SetBuyPrice sets the unit acquisition cost
func (p *Product) SetBuyPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Buy price cannot be negative")
	}
	p.BuyPrice = decimal.NewNullDecimal(price)
	p.Touch()
	return nil
}

// Restock replaces the on-hand stock and the public sell price.
// The buy price is left untouched.
func (p *Product) Restock(stock int, sellPrice decimal.Decimal) error {
	if sellPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sell price cannot be negative")
	}
	p.Stock = stock
	p.SellPrice = sellPrice
	p.Touch()
	return nil
}
