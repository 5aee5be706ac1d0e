package handler

import (
	"net/http"
	"testing"

	importapp "github.com/balcao/backend/internal/application/import"
	"github.com/balcao/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// importWithErrors runs one sales import that records a row error and
// returns its history ID
func importWithErrors(t *testing.T, f *apiFixture) uuid.UUID {
	t.Helper()
	w := f.do(uploadRequest(t, "/api/v1/import/sales", "vendas.csv", salesCSV, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[importapp.SalesImportResult](t, w)
	require.NotNil(t, resp.Data.HistoryID)
	return *resp.Data.HistoryID
}

func TestImportHistoryHandler_ListHistory(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, "RUSH Cherry Burnout", "2")
	salesID := importWithErrors(t, f)

	w := f.do(uploadRequest(t, "/api/v1/import/stock", "stock.csv", "Produto;Stock\nRUSH Cherry Burnout;4\n", nil))
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("all runs", func(t *testing.T) {
		w := f.get("/api/v1/import/history")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[[]dto.ImportHistoryResponse](t, w)
		assert.Len(t, resp.Data, 2)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(2), resp.Meta.Total)
		for _, item := range resp.Data {
			assert.Nil(t, item.Errors, "listings leave errors out")
		}
	})

	t.Run("filtered by entity", func(t *testing.T) {
		w := f.get("/api/v1/import/history?entity_type=sales&page=1&page_size=10")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[[]dto.ImportHistoryResponse](t, w)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, salesID.String(), resp.Data[0].ID)
		assert.Equal(t, "completed", resp.Data[0].Status)
		assert.Equal(t, 10, resp.Meta.PageSize)
	})

	t.Run("invalid filter", func(t *testing.T) {
		w := f.get("/api/v1/import/history?entity_type=orders")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid page size", func(t *testing.T) {
		w := f.get("/api/v1/import/history?page_size=500")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestImportHistoryHandler_GetHistory(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, "RUSH Cherry Burnout", "2")
	id := importWithErrors(t, f)

	t.Run("found", func(t *testing.T) {
		w := f.get("/api/v1/import/history/" + id.String())
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[dto.ImportHistoryResponse](t, w)
		assert.Equal(t, "sales", resp.Data.EntityType)
		assert.Equal(t, "vendas.csv", resp.Data.FileName)
		assert.Equal(t, 4, resp.Data.TotalRows)
		require.Len(t, resp.Data.Errors, 1)
		assert.Equal(t, "Unknown Pouch", resp.Data.Errors[0].Value)
		assert.NotNil(t, resp.Data.CompletedAt)
		assert.GreaterOrEqual(t, resp.Data.DurationMS, int64(0))
	})

	t.Run("not found", func(t *testing.T) {
		w := f.get("/api/v1/import/history/" + uuid.New().String())
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decode[any](t, w).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := f.get("/api/v1/import/history/not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidID, decode[any](t, w).Error.Code)
	})
}

func TestImportHistoryHandler_GetErrors(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, "RUSH Cherry Burnout", "2")
	id := importWithErrors(t, f)

	t.Run("csv download", func(t *testing.T) {
		w := f.get("/api/v1/import/history/" + id.String() + "/errors")
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "import_errors_sales_"+id.String()[:8])
		assert.Contains(t, w.Body.String(), "Row,Column,Error Code,Error Message,Value\n")
		assert.Contains(t, w.Body.String(), "Unknown Pouch")
	})

	t.Run("run without errors", func(t *testing.T) {
		w := f.do(uploadRequest(t, "/api/v1/import/stock", "stock.csv", "Produto;Stock\nRUSH Cherry Burnout;4\n", nil))
		require.Equal(t, http.StatusOK, w.Code)
		stock := decode[importapp.StockUpdateResult](t, w)
		require.NotNil(t, stock.Data.HistoryID)

		w = f.get("/api/v1/import/history/" + stock.Data.HistoryID.String() + "/errors")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNoErrors, decode[any](t, w).Error.Code)
	})

	t.Run("unknown run", func(t *testing.T) {
		w := f.get("/api/v1/import/history/" + uuid.New().String() + "/errors")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
