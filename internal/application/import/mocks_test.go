package importapp

import (
	"context"
	"time"

	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/domain/catalog"
	"github.com/balcao/backend/internal/domain/partner"
	"github.com/balcao/backend/internal/domain/shared"
	"github.com/balcao/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockImportHistoryRepository is a mock implementation of bulk.ImportHistoryRepository
type MockImportHistoryRepository struct {
	mock.Mock
}

func (m *MockImportHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.ImportHistory), args.Error(1)
}

func (m *MockImportHistoryRepository) FindAll(ctx context.Context, filter bulk.ImportHistoryFilter, page shared.Filter) (shared.Paginated[*bulk.ImportHistory], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(shared.Paginated[*bulk.ImportHistory]), args.Error(1)
}

func (m *MockImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByNameInsensitive(ctx context.Context, name string) ([]catalog.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateStockAndPrice(ctx context.Context, id uuid.UUID, stock int, sellPrice decimal.Decimal) error {
	args := m.Called(ctx, id, stock, sellPrice)
	return args.Error(0)
}

// MockClientRepository is a mock implementation of partner.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByName(ctx context.Context, name string) (*partner.Client, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindByNames(ctx context.Context, names []string) ([]partner.Client, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context) ([]partner.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Client), args.Error(1)
}

func (m *MockClientRepository) Create(ctx context.Context, client *partner.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) CreateBatch(ctx context.Context, clients []*partner.Client) error {
	args := m.Called(ctx, clients)
	return args.Error(0)
}

// MockSaleRepository is a mock implementation of trade.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) CreateSale(ctx context.Context, sale *trade.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) CreateItems(ctx context.Context, saleID uuid.UUID, items []trade.SaleItem) error {
	args := m.Called(ctx, saleID, items)
	return args.Error(0)
}

func (m *MockSaleRepository) FindBetween(ctx context.Context, from, to time.Time) ([]trade.Sale, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) DeleteAll(ctx context.Context) (trade.DeleteResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(trade.DeleteResult), args.Error(1)
}

func (m *MockSaleRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]trade.ProductSales, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.ProductSales), args.Error(1)
}
