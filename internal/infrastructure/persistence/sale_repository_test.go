package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/balcao/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type saleFixture struct {
	db       *gorm.DB
	sales    *GormSaleRepository
	products *GormProductRepository
	clientID uuid.UUID
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	db := setupTestDB(t)
	clients := NewGormClientRepository(db)
	c := newClient(t, "Ana")
	require.NoError(t, clients.Create(context.Background(), c))
	return &saleFixture{
		db:       db,
		sales:    NewGormSaleRepository(db),
		products: NewGormProductRepository(db),
		clientID: c.ID,
	}
}

func (f *saleFixture) createSale(t *testing.T, soldAt time.Time, items ...trade.SaleItem) *trade.Sale {
	t.Helper()
	amount, profit := decimal.Zero, decimal.Zero
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		amount = amount.Add(it.UnitPrice.Mul(qty))
		profit = profit.Add(it.UnitProfit.Mul(qty))
	}
	sale, err := trade.NewSale(f.clientID, amount, profit, soldAt)
	require.NoError(t, err)
	require.NoError(t, f.sales.CreateSale(context.Background(), sale))
	require.NoError(t, f.sales.CreateItems(context.Background(), sale.ID, items))
	return sale
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func item(productID uuid.UUID, qty int, price, profit string) trade.SaleItem {
	return trade.SaleItem{
		ProductID:  productID,
		Quantity:   qty,
		UnitPrice:  decimal.RequireFromString(price),
		UnitProfit: decimal.RequireFromString(profit),
	}
}

func TestGormSaleRepository_CreateSaleAssignsID(t *testing.T) {
	f := newSaleFixture(t)
	p := seedProduct(t, f.products, "CUBA Cherry Strong", "4")

	sale := f.createSale(t, day(13), item(p.ID, 3, "6.00", "1.6667"))
	assert.NotEqual(t, uuid.Nil, sale.ID)

	var count int64
	require.NoError(t, f.db.Table("sale_items").Where("sale_id = ?", sale.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormSaleRepository_CreateItemsEmpty(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	repo := NewGormSaleRepository(gormDB)
	require.NoError(t, repo.CreateItems(context.Background(), uuid.New(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSaleRepository_CreateSaleFailureClearsID(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	mock.ExpectExec(`INSERT INTO "sales"`).WillReturnError(assert.AnError)

	repo := NewGormSaleRepository(gormDB)
	sale, err := trade.NewSale(uuid.New(), decimal.NewFromInt(1), decimal.Zero, day(1))
	require.NoError(t, err)

	err = repo.CreateSale(context.Background(), sale)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, sale.ID)
}

func TestGormSaleRepository_FindBetween(t *testing.T) {
	f := newSaleFixture(t)
	p := seedProduct(t, f.products, "CUBA Cherry Strong", "4")

	f.createSale(t, day(10), item(p.ID, 1, "5", "1"))
	f.createSale(t, day(13), item(p.ID, 2, "5", "1"))
	f.createSale(t, day(20), item(p.ID, 3, "5", "1"))

	sales, err := f.sales.FindBetween(context.Background(), day(10), day(20))
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.True(t, sales[0].SoldAt.Equal(day(10)))
	assert.True(t, sales[1].TotalAmount.Equal(decimal.NewFromInt(10)))
}

func TestGormSaleRepository_TopProducts(t *testing.T) {
	f := newSaleFixture(t)
	cherry := seedProduct(t, f.products, "CUBA Cherry Strong", "4")
	velo := seedProduct(t, f.products, "VELO Mighty Peppermint", "3")

	f.createSale(t, day(13), item(cherry.ID, 3, "6", "2"), item(velo.ID, 1, "5", "2"))
	f.createSale(t, day(14), item(velo.ID, 5, "5", "2"))
	f.createSale(t, day(25), item(cherry.ID, 10, "6", "2"))

	top, err := f.sales.TopProducts(context.Background(), day(1), day(20), 5)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, velo.ID, top[0].ProductID)
	assert.Equal(t, "VELO Mighty Peppermint", top[0].ProductName)
	assert.Equal(t, int64(6), top[0].Quantity)
	assert.True(t, top[0].Revenue.Equal(decimal.NewFromInt(30)), "revenue %s", top[0].Revenue)
	assert.True(t, top[0].Profit.Equal(decimal.NewFromInt(12)))

	assert.Equal(t, cherry.ID, top[1].ProductID)
	assert.Equal(t, int64(3), top[1].Quantity)

	top, err = f.sales.TopProducts(context.Background(), day(1), day(20), 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestGormSaleRepository_DeleteAll(t *testing.T) {
	f := newSaleFixture(t)
	p := seedProduct(t, f.products, "CUBA Cherry Strong", "4")
	f.createSale(t, day(13), item(p.ID, 1, "5", "1"), item(uuid.New(), 1, "5", "1"))
	f.createSale(t, day(14), item(p.ID, 1, "5", "1"))

	result, err := f.sales.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, trade.DeleteResult{ItemsDeleted: 3, SalesDeleted: 2}, result)

	sales, err := f.sales.FindBetween(context.Background(), day(1), day(31))
	require.NoError(t, err)
	assert.Empty(t, sales)

	result, err = f.sales.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.ItemsDeleted)
}

func TestGormSaleRepository_DeleteAllOrder(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "sale_items"`).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "sales"`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	result, err := NewGormSaleRepository(gormDB).DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.ItemsDeleted)
	assert.Equal(t, int64(2), result.SalesDeleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
