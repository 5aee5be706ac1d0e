package importapp

import (
	"context"
	"errors"
	"testing"

	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/domain/shared"
	csvimport "github.com/balcao/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestImportHistoryService_CreateHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		repo.On("Save", ctx, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)

		history, err := service.CreateHistory(ctx, bulk.ImportEntitySales, "vendas.csv", 1024)

		require.NoError(t, err)
		assert.Equal(t, bulk.ImportEntitySales, history.EntityType)
		assert.Equal(t, "vendas.csv", history.FileName)
		assert.Equal(t, bulk.ImportStatusPending, history.Status)
		repo.AssertExpectations(t)
	})

	t.Run("invalid entity type", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		_, err := service.CreateHistory(ctx, bulk.ImportEntityType("orders"), "vendas.csv", 1024)

		require.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("save failure", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		repo.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := service.CreateHistory(ctx, bulk.ImportEntityStock, "stock.csv", 10)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestImportHistoryService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := new(MockImportHistoryRepository)
	service := NewImportHistoryService(repo)

	history := createTestHistoryEntity()
	repo.On("FindByID", ctx, history.ID).Return(history, nil)
	repo.On("Save", ctx, history).Return(nil)

	require.NoError(t, service.StartProcessing(ctx, history.ID, 40))
	assert.Equal(t, bulk.ImportStatusProcessing, history.Status)

	rowErrors := []csvimport.RowError{
		csvimport.NewRowErrorWithValue(3, "Produto", csvimport.ErrCodeImportReferenceNotFound, "unknown product", "Foo"),
	}
	require.NoError(t, service.CompleteImport(ctx, history.ID, 10, 1, 2, rowErrors))

	assert.Equal(t, bulk.ImportStatusCompleted, history.Status)
	assert.Equal(t, 10, history.SuccessRows)
	require.Len(t, history.ErrorDetails, 1)
	assert.Equal(t, "Foo", history.ErrorDetails[0].Value)
	assert.Equal(t, csvimport.ErrCodeImportReferenceNotFound, history.ErrorDetails[0].Code)
	repo.AssertNumberOfCalls(t, "Save", 2)
}

func TestImportHistoryService_FailImport(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity()
		repo.On("FindByID", ctx, history.ID).Return(history, nil)
		repo.On("Save", ctx, history).Return(nil)

		err := service.FailImport(ctx, history.ID, []csvimport.RowError{
			csvimport.NewRowError(0, "", csvimport.ErrCodeImportCatalog, "catalog unavailable"),
		})

		require.NoError(t, err)
		assert.Equal(t, bulk.ImportStatusFailed, history.Status)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		err := service.FailImport(ctx, id, nil)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestImportHistoryService_ListHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("valid filters are passed through", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity()
		page := shared.NewPaginated([]*bulk.ImportHistory{history}, 1, 1, 20)

		repo.On("FindAll", ctx, mock.MatchedBy(func(f bulk.ImportHistoryFilter) bool {
			return f.EntityType != nil && *f.EntityType == bulk.ImportEntitySales &&
				f.Status != nil && *f.Status == bulk.ImportStatusCompleted
		}), shared.Filter{Page: 1, PageSize: 20}).Return(page, nil)

		res, err := service.ListHistory(ctx, ListHistoryFilter{EntityType: "sales", Status: "completed"}, shared.Filter{Page: 1, PageSize: 20})

		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Total)
		assert.Len(t, res.Items, 1)
		repo.AssertExpectations(t)
	})

	t.Run("unknown filters and bad paging fall back", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		empty := shared.NewPaginated([]*bulk.ImportHistory{}, 0, 1, 20)
		repo.On("FindAll", ctx, bulk.ImportHistoryFilter{}, shared.Filter{Page: 1, PageSize: 20}).Return(empty, nil)

		res, err := service.ListHistory(ctx, ListHistoryFilter{EntityType: "orders", Status: "cancelled"}, shared.Filter{Page: 0, PageSize: 1000})

		require.NoError(t, err)
		assert.Empty(t, res.Items)
		repo.AssertExpectations(t)
	})
}

func TestImportHistoryService_GetErrorsCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity()
		_ = history.StartProcessing(100)
		details := []bulk.ImportErrorDetail{
			{Row: 4, Column: "Produto", Code: "ERR_IMPORT_REFERENCE_NOT_FOUND", Message: "unknown product", Value: "Foo"},
			{Row: 0, Code: "ERR_IMPORT_PERSISTENCE", Message: "sale write failed"},
		}
		_ = history.Complete(98, 2, 0, details)

		repo.On("FindByID", ctx, history.ID).Return(history, nil)

		csv, fileName, err := service.GetErrorsCSV(ctx, history.ID)

		require.NoError(t, err)
		assert.Contains(t, csv, "Row,Column,Error Code,Error Message,Value")
		assert.Contains(t, csv, "4,Produto,ERR_IMPORT_REFERENCE_NOT_FOUND,unknown product,Foo")
		assert.Contains(t, csv, "0,,ERR_IMPORT_PERSISTENCE,sale write failed,")
		assert.Contains(t, fileName, "import_errors_sales_")
	})

	t.Run("no errors to export", func(t *testing.T) {
		repo := new(MockImportHistoryRepository)
		service := NewImportHistoryService(repo)

		history := createTestHistoryEntity()
		_ = history.StartProcessing(100)
		_ = history.Complete(100, 0, 0, nil)

		repo.On("FindByID", ctx, history.ID).Return(history, nil)

		_, _, err := service.GetErrorsCSV(ctx, history.ID)

		require.Error(t, err)
		assert.Equal(t, "NO_ERRORS", shared.ErrorCode(err))
	})
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"simple", "hello", "hello"},
		{"with comma", "hello,world", "\"hello,world\""},
		{"with newline", "hello\nworld", "\"hello\nworld\""},
		{"with quotes", "say \"hello\"", "\"say \"\"hello\"\"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeCSV(tt.input))
		})
	}
}

func createTestHistoryEntity() *bulk.ImportHistory {
	history, _ := bulk.NewImportHistory(bulk.ImportEntitySales, "vendas.csv", 1024)
	return history
}
