package handler

import (
	"errors"
	"net/http"

	importapp "github.com/balcao/backend/internal/application/import"
	"github.com/balcao/backend/internal/domain/shared"
	"github.com/balcao/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ImportHistoryHandler handles import history related HTTP requests
type ImportHistoryHandler struct {
	BaseHandler
	historyService *importapp.ImportHistoryService
}

// NewImportHistoryHandler creates a new ImportHistoryHandler
func NewImportHistoryHandler(historyService *importapp.ImportHistoryService) *ImportHistoryHandler {
	return &ImportHistoryHandler{
		historyService: historyService,
	}
}

// ListHistory godoc
//
//	@Summary		List import runs
//	@Description	Returns a paginated list of import runs, newest first
//	@Tags			import
//	@ID				listImportHistory
//	@Produce		json
//	@Param			entity_type	query		string	false	"Filter by entity type"	Enums(sales, stock)
//	@Param			status		query		string	false	"Filter by status"	Enums(pending, processing, completed, failed)
//	@Param			page		query		int		false	"Page number (default: 1)"
//	@Param			page_size	query		int		false	"Page size (default: 20, max: 100)"
//	@Success		200			{object}	APIResponse[[]dto.ImportHistoryResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/import/history [get]
func (h *ImportHistoryHandler) ListHistory(c *gin.Context) {
	var req dto.ImportHistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid request parameters: "+err.Error())
		return
	}

	filter := importapp.ListHistoryFilter{
		EntityType: req.EntityType,
		Status:     req.Status,
	}
	page := shared.Filter{Page: req.Page, PageSize: req.PageSize}

	result, err := h.historyService.ListHistory(c.Request.Context(), filter, page)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.NewImportHistoryListResponse(result), result.Total, result.Page, result.PageSize)
}

// GetHistory godoc
//
//	@Summary		Get an import run
//	@Description	Returns one import run with its recorded row errors
//	@Tags			import
//	@ID				getImportHistory
//	@Produce		json
//	@Param			id	path		string	true	"Import history ID"
//	@Success		200	{object}	APIResponse[dto.ImportHistoryResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/import/history/{id} [get]
func (h *ImportHistoryHandler) GetHistory(c *gin.Context) {
	historyID, ok := parseID(c)
	if !ok {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid history ID")
		return
	}

	history, err := h.historyService.GetHistory(c.Request.Context(), historyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Import history not found")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewImportHistoryResponse(history))
}

// GetErrors godoc
//
//	@Summary		Download import errors as CSV
//	@Description	Downloads the row errors of an import run as a CSV file
//	@Tags			import
//	@ID				getImportErrors
//	@Produce		text/csv
//	@Param			id	path		string	true	"Import history ID"
//	@Success		200	{string}	string	"CSV content"
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/import/history/{id}/errors [get]
func (h *ImportHistoryHandler) GetErrors(c *gin.Context) {
	historyID, ok := parseID(c)
	if !ok {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid history ID")
		return
	}

	csvContent, fileName, err := h.historyService.GetErrorsCSV(c.Request.Context(), historyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Import history not found")
			return
		}
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvContent))
}

// RegisterRoutes registers all import history routes
func (h *ImportHistoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	history := rg.Group("/import/history")
	{
		history.GET("", h.ListHistory)
		history.GET("/:id", h.GetHistory)
		history.GET("/:id/errors", h.GetErrors)
	}
}
