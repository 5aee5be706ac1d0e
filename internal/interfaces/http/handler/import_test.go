package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	importapp "github.com/balcao/backend/internal/application/import"
	csvimport "github.com/balcao/backend/internal/infrastructure/import"
	"github.com/balcao/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "Data;Nome do Cliente;Produto;Preço Unitário;Quantidade\n" +
	"13-01-2025;Ana;RUSH Cherry Burnout;5;1\n" +
	"13-01-2025;Ana;RUSH Cherry Burnout;5;2\n" +
	"14-01-2025;Bruno;RUSH Cherry Burnout;5;1\n" +
	"14-01-2025;Bruno;Unknown Pouch;5;1\n"

func TestImportHandler_ImportSales(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, "RUSH Cherry Burnout", "2")

	w := f.do(uploadRequest(t, "/api/v1/import/sales", "vendas.csv", salesCSV, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[importapp.SalesImportResult](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "vendas.csv", resp.Data.FileName)
	assert.Equal(t, 4, resp.Data.TotalRows)
	assert.Equal(t, 1, resp.Data.UnrecognizedRows)
	assert.Equal(t, 2, resp.Data.ClientsCreated)
	assert.Equal(t, 2, resp.Data.SalesImported)
	assert.True(t, resp.Data.ImportedAmount.Equal(decimal.NewFromInt(20)), "amount %s", resp.Data.ImportedAmount)
	assert.Equal(t, map[string]int{"Unknown Pouch": 1}, resp.Data.UnrecognizedNames)
	require.NotNil(t, resp.Data.HistoryID)
}

func TestImportHandler_ImportSalesDryRun(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, "RUSH Cherry Burnout", "2")

	w := f.do(uploadRequest(t, "/api/v1/import/sales", "vendas.csv", salesCSV, map[string]string{"dry_run": "true"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[importapp.SalesImportResult](t, w)
	assert.True(t, resp.Data.DryRun)
	assert.Equal(t, 2, resp.Data.SalesPlanned)
	assert.Zero(t, resp.Data.SalesImported)
	assert.Equal(t, 2, resp.Data.ClientsToCreate)
	assert.Nil(t, resp.Data.HistoryID)

	// nothing was written, so a real run still creates both clients
	w = f.do(uploadRequest(t, "/api/v1/import/sales", "vendas.csv", salesCSV, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[importapp.SalesImportResult](t, w).Data.ClientsCreated)
}

func TestImportHandler_ImportSalesErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		f := newAPIFixture(t)
		w := f.do(uploadRequest(t, "/api/v1/import/sales", "", "", map[string]string{"dry_run": "true"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decode[any](t, w).Error.Code)
	})

	t.Run("missing columns", func(t *testing.T) {
		f := newAPIFixture(t)
		w := f.do(uploadRequest(t, "/api/v1/import/sales", "vendas.csv", "Cliente;Artigo\nAna;X\n", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, csvimport.ErrCodeImportMissingHeader, decode[any](t, w).Error.Code)
	})

	t.Run("file too large", func(t *testing.T) {
		f := newAPIFixture(t)
		big := salesCSV + strings.Repeat("13-01-2025;Ana;RUSH Cherry Burnout;5;1\n", testMaxFileSize/38+1)
		w := f.do(uploadRequest(t, "/api/v1/import/sales", "vendas.csv", big, nil))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, csvimport.ErrCodeImportFileTooLarge, decode[any](t, w).Error.Code)
	})
}

func TestImportHandler_UpdateStock(t *testing.T) {
	f := newAPIFixture(t)
	product := f.seedProduct(t, "RUSH Cherry Burnout", "2")

	sheet := "Produto;Preço;Stock\n" +
		"rush cherry burnout ;6,50;12\n" +
		"Unknown Pouch;4;3\n"
	w := f.do(uploadRequest(t, "/api/v1/import/stock", "stock.csv", sheet, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[importapp.StockUpdateResult](t, w)
	assert.Equal(t, 2, resp.Data.TotalRows)
	assert.Equal(t, 1, resp.Data.Updated)
	assert.Equal(t, 1, resp.Data.NotFound)
	assert.Equal(t, []string{"Unknown Pouch"}, resp.Data.NotFoundIn)

	updated, err := f.products.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Stock)
	assert.True(t, updated.SellPrice.Equal(decimal.RequireFromString("6.5")))
	assert.True(t, updated.BuyPrice.Decimal.Equal(decimal.NewFromInt(2)))
}

func TestImportHandler_UpdateStockMissingColumn(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(uploadRequest(t, "/api/v1/import/stock", "stock.csv", "Artigo;Stock\nX;1\n", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, csvimport.ErrCodeImportMissingHeader, decode[any](t, w).Error.Code)
}
