package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/balcao/backend/internal/domain/catalog"
	"github.com/balcao/backend/internal/domain/shared"
	"github.com/balcao/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindAll returns every product ordered by name
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).Order("name").Find(&productModels).Error; err != nil {
		return nil, err
	}
	return toProducts(productModels), nil
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNameInsensitive returns products whose trimmed name equals name, ignoring case.
// Results are ordered by creation so the first match is stable.
func (r *GormProductRepository) FindByNameInsensitive(ctx context.Context, name string) ([]catalog.Product, error) {
	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(TRIM(name)) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("created_at").
		Find(&productModels).Error; err != nil {
		return nil, err
	}
	return toProducts(productModels), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).Save(model).Error
}

// UpdateStockAndPrice sets stock and sell price for a single product
func (r *GormProductRepository) UpdateStockAndPrice(ctx context.Context, id uuid.UUID, stock int, sellPrice decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      stock,
			"sell_price": sellPrice,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toProducts(productModels []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(productModels))
	for i := range productModels {
		products[i] = *productModels[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
