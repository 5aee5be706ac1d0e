package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	importapp "github.com/balcao/backend/internal/application/import"
	reportapp "github.com/balcao/backend/internal/application/report"
	"github.com/balcao/backend/internal/domain/catalog"
	"github.com/balcao/backend/internal/infrastructure/cache"
	"github.com/balcao/backend/internal/infrastructure/persistence"
	"github.com/balcao/backend/internal/infrastructure/persistence/models"
	"github.com/balcao/backend/internal/infrastructure/renames"
	"github.com/balcao/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testMaxFileSize = 1 << 20

// apiFixture serves every balcao route over an in-memory database
type apiFixture struct {
	router   *gin.Engine
	products *persistence.GormProductRepository
	history  *persistence.GormImportHistoryRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	products := persistence.NewGormProductRepository(db)
	clients := persistence.NewGormClientRepository(db)
	sales := persistence.NewGormSaleRepository(db)
	historyRepo := persistence.NewGormImportHistoryRepository(db)

	table, err := renames.Default()
	require.NoError(t, err)

	history := importapp.NewImportHistoryService(historyRepo)
	resolver := importapp.NewClientResolver(clients, cache.NewClientIDCache(time.Minute), "", zap.NewNop())
	salesService := importapp.NewSalesImportService(products, sales, resolver, history, table,
		importapp.DefaultSalesImportOptions(), zap.NewNop())
	stockService := importapp.NewStockUpdateService(products, history, 100, testMaxFileSize, zap.NewNop())

	router := gin.New()
	api := router.Group("/api/v1")
	NewImportHandler(salesService, stockService, testMaxFileSize).RegisterRoutes(api)
	NewImportHistoryHandler(history).RegisterRoutes(api)
	NewReportHandler(reportapp.NewSalesSummaryService(sales, zap.NewNop())).RegisterRoutes(api)

	return &apiFixture{router: router, products: products, history: historyRepo}
}

func (f *apiFixture) seedProduct(t *testing.T, name, buyPrice string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "")
	require.NoError(t, err)
	require.NoError(t, p.SetBuyPrice(decimal.RequireFromString(buyPrice)))
	require.NoError(t, f.products.Save(context.Background(), p))
	return p
}

func (f *apiFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// uploadRequest builds a multipart POST; an empty fileName sends no file part
func uploadRequest(t *testing.T, path, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// envelope decodes the standard response with a typed data field
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}
