package handler

import (
	"net/http"
	"testing"

	"github.com/balcao/backend/internal/domain/report"
	"github.com/balcao/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_GetSalesSummary(t *testing.T) {
	f := newAPIFixture(t)
	f.seedProduct(t, "RUSH Cherry Burnout", "2")
	importWithErrors(t, f)

	t.Run("explicit days", func(t *testing.T) {
		w := f.get("/api/v1/reports/sales-summary?from=2025-01-01&to=2025-01-31&top_n=5")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[report.SalesSummary](t, w)
		assert.Equal(t, 2, resp.Data.SaleCount)
		assert.True(t, resp.Data.Revenue.Equal(decimal.NewFromInt(20)), "revenue %s", resp.Data.Revenue)
		assert.True(t, resp.Data.Profit.Equal(decimal.NewFromInt(12)), "profit %s", resp.Data.Profit)
		assert.True(t, resp.Data.Margin.Equal(decimal.RequireFromString("0.6")), "margin %s", resp.Data.Margin)
		require.NotNil(t, resp.Data.BestDay)
		assert.Equal(t, "2025-01-13", resp.Data.BestDay.Date)
		require.Len(t, resp.Data.TopProducts, 1)
		assert.Equal(t, "RUSH Cherry Burnout", resp.Data.TopProducts[0].ProductName)
		assert.Equal(t, int64(4), resp.Data.TopProducts[0].Quantity)
	})

	t.Run("period outside the sales", func(t *testing.T) {
		w := f.get("/api/v1/reports/sales-summary?from=2024-06-01&to=2024-06-30")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[report.SalesSummary](t, w)
		assert.Zero(t, resp.Data.SaleCount)
		assert.Nil(t, resp.Data.BestDay)
		assert.Empty(t, resp.Data.TopProducts)
	})

	t.Run("named range", func(t *testing.T) {
		w := f.get("/api/v1/reports/sales-summary?range=week")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown range", func(t *testing.T) {
		w := f.get("/api/v1/reports/sales-summary?range=decade")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidRange, decode[any](t, w).Error.Code)
	})

	t.Run("reversed days", func(t *testing.T) {
		w := f.get("/api/v1/reports/sales-summary?from=2025-02-01&to=2025-01-01")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed day", func(t *testing.T) {
		w := f.get("/api/v1/reports/sales-summary?from=01/02/2025&to=2025-01-31")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("top_n out of bounds", func(t *testing.T) {
		w := f.get("/api/v1/reports/sales-summary?top_n=0")
		// zero is omitted by binding and falls back to the default
		assert.Equal(t, http.StatusOK, w.Code)

		w = f.get("/api/v1/reports/sales-summary?top_n=1000")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
