package dto

import (
	"time"

	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/domain/shared"
)

// SalesImportForm carries the non-file fields of a sales upload
type SalesImportForm struct {
	DryRun bool `form:"dry_run"`
}

// ImportHistoryListRequest represents the query of an import history listing
type ImportHistoryListRequest struct {
	ListRequest
	EntityType string `form:"entity_type" binding:"omitempty,oneof=sales stock"`
	Status     string `form:"status" binding:"omitempty,oneof=pending processing completed failed"`
}

// ImportErrorResponse is one recorded row error of an import run
type ImportErrorResponse struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportHistoryResponse represents one import run
// @Description Import run record
type ImportHistoryResponse struct {
	ID          string                `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EntityType  string                `json:"entity_type" example:"sales"`
	FileName    string                `json:"file_name" example:"vendas.csv"`
	FileSize    int64                 `json:"file_size" example:"1024"`
	Status      string                `json:"status" example:"completed"`
	TotalRows   int                   `json:"total_rows" example:"120"`
	SuccessRows int                   `json:"success_rows" example:"40"`
	ErrorRows   int                   `json:"error_rows" example:"0"`
	SkippedRows int                   `json:"skipped_rows" example:"3"`
	Errors      []ImportErrorResponse `json:"errors,omitempty"`
	StartedAt   *time.Time            `json:"started_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	DurationMS  int64                 `json:"duration_ms" example:"840"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewImportHistoryResponse converts a domain record to its response
func NewImportHistoryResponse(h *bulk.ImportHistory) ImportHistoryResponse {
	resp := ImportHistoryResponse{
		ID:          h.ID.String(),
		EntityType:  string(h.EntityType),
		FileName:    h.FileName,
		FileSize:    h.FileSize,
		Status:      string(h.Status),
		TotalRows:   h.TotalRows,
		SuccessRows: h.SuccessRows,
		ErrorRows:   h.ErrorRows,
		SkippedRows: h.SkippedRows,
		StartedAt:   h.StartedAt,
		CompletedAt: h.CompletedAt,
		DurationMS:  h.Duration().Milliseconds(),
		CreatedAt:   h.CreatedAt,
	}
	for _, e := range h.ErrorDetails {
		resp.Errors = append(resp.Errors, ImportErrorResponse(e))
	}
	return resp
}

// NewImportHistoryListResponse converts a page of records; errors are
// left out of listings and only returned by the detail endpoint
func NewImportHistoryListResponse(page shared.Paginated[*bulk.ImportHistory]) []ImportHistoryResponse {
	items := make([]ImportHistoryResponse, len(page.Items))
	for i, h := range page.Items {
		items[i] = NewImportHistoryResponse(h)
		items[i].Errors = nil
	}
	return items
}
