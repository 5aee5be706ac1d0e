package bulk

import (
	"testing"
	"time"

	"github.com/balcao/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportEntityType_IsValid(t *testing.T) {
	tests := []struct {
		name       string
		entityType ImportEntityType
		want       bool
	}{
		{"sales", ImportEntitySales, true},
		{"stock", ImportEntityStock, true},
		{"invalid", ImportEntityType("invalid"), false},
		{"empty", ImportEntityType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entityType.IsValid())
		})
	}
}

func TestImportStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status ImportStatus
		want   bool
	}{
		{"pending", ImportStatusPending, false},
		{"processing", ImportStatusProcessing, false},
		{"completed", ImportStatusCompleted, true},
		{"failed", ImportStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.status.IsValid())
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
	assert.False(t, ImportStatus("cancelled").IsValid())
}

func TestNewImportHistory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		h, err := NewImportHistory(ImportEntitySales, "vendas.csv", 2048)
		require.NoError(t, err)
		assert.Equal(t, ImportEntitySales, h.EntityType)
		assert.Equal(t, "vendas.csv", h.FileName)
		assert.Equal(t, int64(2048), h.FileSize)
		assert.Equal(t, ImportStatusPending, h.Status)
		assert.NotEmpty(t, h.ID)
		assert.Empty(t, h.ErrorDetails)
		assert.Nil(t, h.StartedAt)
	})

	t.Run("invalid entity type", func(t *testing.T) {
		_, err := NewImportHistory(ImportEntityType("orders"), "x.csv", 1)
		require.Error(t, err)
		assert.Equal(t, "INVALID_ENTITY_TYPE", shared.ErrorCode(err))
	})

	t.Run("empty file name", func(t *testing.T) {
		_, err := NewImportHistory(ImportEntityStock, "", 1)
		assert.Equal(t, "INVALID_FILE_NAME", shared.ErrorCode(err))
	})

	t.Run("negative size", func(t *testing.T) {
		_, err := NewImportHistory(ImportEntityStock, "stock.xlsx", -1)
		assert.Equal(t, "INVALID_FILE_SIZE", shared.ErrorCode(err))
	})
}

func TestImportHistory_Lifecycle(t *testing.T) {
	h, err := NewImportHistory(ImportEntitySales, "vendas.csv", 100)
	require.NoError(t, err)

	require.NoError(t, h.StartProcessing(40))
	assert.Equal(t, ImportStatusProcessing, h.Status)
	assert.Equal(t, 40, h.TotalRows)
	require.NotNil(t, h.StartedAt)

	err = h.StartProcessing(40)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))

	details := []ImportErrorDetail{{Row: 3, Code: "ERR_IMPORT_REFERENCE_NOT_FOUND", Message: "unknown product"}}
	require.NoError(t, h.Complete(37, 1, 2, details))
	assert.Equal(t, ImportStatusCompleted, h.Status)
	assert.Equal(t, 37, h.SuccessRows)
	assert.Equal(t, 1, h.ErrorRows)
	assert.Equal(t, 2, h.SkippedRows)
	require.NotNil(t, h.CompletedAt)
	assert.GreaterOrEqual(t, h.Duration(), time.Duration(0))

	err = h.Fail(nil)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
}

func TestImportHistory_CompleteWithNoSuccessFails(t *testing.T) {
	h, err := NewImportHistory(ImportEntityStock, "stock.csv", 10)
	require.NoError(t, err)
	require.NoError(t, h.StartProcessing(2))

	require.NoError(t, h.Complete(0, 2, 0, nil))
	assert.Equal(t, ImportStatusFailed, h.Status)
}

func TestImportHistory_CompleteRequiresProcessing(t *testing.T) {
	h, err := NewImportHistory(ImportEntityStock, "stock.csv", 10)
	require.NoError(t, err)

	err = h.Complete(1, 0, 0, nil)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
}

func TestImportHistory_FailFromPending(t *testing.T) {
	h, err := NewImportHistory(ImportEntitySales, "vendas.csv", 10)
	require.NoError(t, err)

	require.NoError(t, h.Fail([]ImportErrorDetail{{Code: "ERR_IMPORT_CATALOG", Message: "catalog unavailable"}}))
	assert.Equal(t, ImportStatusFailed, h.Status)
	assert.Len(t, h.ErrorDetails, 1)
	assert.Zero(t, h.Duration())
}

func TestImportHistory_ErrorDetailsJSON(t *testing.T) {
	h, err := NewImportHistory(ImportEntitySales, "vendas.csv", 10)
	require.NoError(t, err)

	s, err := h.ErrorDetailsJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	h.ErrorDetails = []ImportErrorDetail{{Row: 5, Column: "Produto", Code: "X", Message: "bad", Value: "Foo"}}
	s, err = h.ErrorDetailsJSON()
	require.NoError(t, err)

	restored := &ImportHistory{}
	require.NoError(t, restored.SetErrorDetailsFromJSON(s))
	assert.Equal(t, h.ErrorDetails, restored.ErrorDetails)

	assert.Error(t, restored.SetErrorDetailsFromJSON("{not json"))
	require.NoError(t, restored.SetErrorDetailsFromJSON(""))
	assert.Empty(t, restored.ErrorDetails)
}
