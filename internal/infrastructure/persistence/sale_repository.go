package persistence

import (
	"context"
	"time"

	"github.com/balcao/backend/internal/domain/trade"
	"github.com/balcao/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// CreateSale inserts a sale header and assigns its ID
func (r *GormSaleRepository) CreateSale(ctx context.Context, sale *trade.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	var model models.SaleModel
	model.FromDomain(sale)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		sale.ID = uuid.Nil
		return err
	}
	return nil
}

// CreateItems inserts the lines of an existing sale in a single statement
func (r *GormSaleRepository) CreateItems(ctx context.Context, saleID uuid.UUID, items []trade.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now()
	itemModels := make([]*models.SaleItemModel, len(items))
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].SaleID = saleID
		itemModels[i] = models.SaleItemModelFromDomain(saleID, items[i])
		itemModels[i].CreatedAt = now
	}
	return r.db.WithContext(ctx).Create(&itemModels).Error
}

// FindBetween returns sales sold in [from, to), oldest first
func (r *GormSaleRepository) FindBetween(ctx context.Context, from, to time.Time) ([]trade.Sale, error) {
	var saleModels []models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("sold_at >= ? AND sold_at < ?", from, to).
		Order("sold_at, created_at").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}
	sales := make([]trade.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = *saleModels[i].ToDomain()
	}
	return sales, nil
}

// DeleteAll removes every sale line and then every sale in one transaction
func (r *GormSaleRepository) DeleteAll(ctx context.Context) (trade.DeleteResult, error) {
	var result trade.DeleteResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

		items := global.Delete(&models.SaleItemModel{})
		if items.Error != nil {
			return items.Error
		}
		result.ItemsDeleted = items.RowsAffected

		sales := global.Delete(&models.SaleModel{})
		if sales.Error != nil {
			return sales.Error
		}
		result.SalesDeleted = sales.RowsAffected
		return nil
	})
	if err != nil {
		return trade.DeleteResult{}, err
	}
	return result, nil
}

// TopProducts aggregates sale lines of sales sold in [from, to) by product,
// best sellers by quantity first
func (r *GormSaleRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]trade.ProductSales, error) {
	var rows []trade.ProductSales
	query := r.db.WithContext(ctx).
		Table("sale_items AS si").
		Select(`si.product_id AS product_id,
			COALESCE(p.name, '') AS product_name,
			SUM(si.quantity) AS quantity,
			SUM(si.unit_price * si.quantity) AS revenue,
			SUM(si.unit_profit * si.quantity) AS profit`).
		Joins("JOIN sales s ON s.id = si.sale_id").
		Joins("LEFT JOIN products p ON p.id = si.product_id").
		Where("s.sold_at >= ? AND s.sold_at < ?", from, to).
		Group("si.product_id, p.name").
		Order("quantity DESC, revenue DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
