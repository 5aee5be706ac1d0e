package importapp

import (
	"context"
	"testing"
	"time"

	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/domain/catalog"
	"github.com/balcao/backend/internal/infrastructure/cache"
	"github.com/balcao/backend/internal/infrastructure/persistence"
	"github.com/balcao/backend/internal/infrastructure/persistence/models"
	"github.com/balcao/backend/internal/infrastructure/renames"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testBackend is an in-memory backend with every repository the import services use
type testBackend struct {
	db       *gorm.DB
	products *persistence.GormProductRepository
	clients  *persistence.GormClientRepository
	sales    *persistence.GormSaleRepository
	history  *persistence.GormImportHistoryRepository
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))

	return &testBackend{
		db:       db,
		products: persistence.NewGormProductRepository(db),
		clients:  persistence.NewGormClientRepository(db),
		sales:    persistence.NewGormSaleRepository(db),
		history:  persistence.NewGormImportHistoryRepository(db),
	}
}

// seedProduct adds a catalog product; an empty buyPrice leaves the cost unknown
func (b *testBackend) seedProduct(t *testing.T, name, buyPrice string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "")
	require.NoError(t, err)
	if buyPrice != "" {
		require.NoError(t, p.SetBuyPrice(decimal.RequireFromString(buyPrice)))
	}
	require.NoError(t, b.products.Save(context.Background(), p))
	return p
}

func (b *testBackend) saleItems(t *testing.T) []models.SaleItemModel {
	t.Helper()
	var items []models.SaleItemModel
	require.NoError(t, b.db.Order("created_at").Find(&items).Error)
	return items
}

func (b *testBackend) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, b.db.Model(model).Count(&n).Error)
	return n
}

func defaultRenames(t *testing.T) bulk.RenameTable {
	t.Helper()
	table, err := renames.Default()
	require.NoError(t, err)
	return table
}

func newSalesService(t *testing.T, b *testBackend, opts SalesImportOptions) *SalesImportService {
	t.Helper()
	resolver := NewClientResolver(b.clients, cache.NewClientIDCache(time.Minute), "", zap.NewNop())
	return NewSalesImportService(
		b.products,
		b.sales,
		resolver,
		NewImportHistoryService(b.history),
		defaultRenames(t),
		opts,
		zap.NewNop(),
	)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
