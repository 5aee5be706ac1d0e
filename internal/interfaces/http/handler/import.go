package handler

import (
	"errors"
	"mime/multipart"

	importapp "github.com/balcao/backend/internal/application/import"
	"github.com/balcao/backend/internal/domain/shared"
	csvimport "github.com/balcao/backend/internal/infrastructure/import"
	"github.com/balcao/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ImportHandler handles data drop uploads
type ImportHandler struct {
	BaseHandler
	sales       *importapp.SalesImportService
	stock       *importapp.StockUpdateService
	maxFileSize int64
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(sales *importapp.SalesImportService, stock *importapp.StockUpdateService, maxFileSize int64) *ImportHandler {
	return &ImportHandler{
		sales:       sales,
		stock:       stock,
		maxFileSize: maxFileSize,
	}
}

// ImportSales godoc
//
//	@Summary		Import a sales data drop
//	@Description	Canonicalizes, aggregates and records the sales of a CSV or XLSX export
//	@Tags			import
//	@ID				importSales
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Sales export (CSV or XLSX)"
//	@Param			dry_run	formData	bool	false	"Aggregate and report without writing"
//	@Success		200		{object}	APIResponse[importapp.SalesImportResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/import/sales [post]
func (h *ImportHandler) ImportSales(c *gin.Context) {
	var form dto.SalesImportForm
	if err := c.ShouldBind(&form); err != nil {
		h.BadRequest(c, "Invalid request parameters: "+err.Error())
		return
	}
	file, header, ok := h.upload(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.sales.Import(c.Request.Context(), importapp.SalesImportRequest{
		FileName: header.Filename,
		Reader:   file,
		Size:     header.Size,
		DryRun:   form.DryRun,
	})
	if err != nil {
		h.HandleError(c, importError(err))
		return
	}
	h.Success(c, result)
}

// UpdateStock godoc
//
//	@Summary		Refresh stock and sell prices
//	@Description	Applies a stock sheet to the catalog; buy prices are not changed
//	@Tags			import
//	@ID				updateStock
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Stock sheet (CSV or XLSX)"
//	@Success		200		{object}	APIResponse[importapp.StockUpdateResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/import/stock [post]
func (h *ImportHandler) UpdateStock(c *gin.Context) {
	file, header, ok := h.upload(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.stock.Update(c.Request.Context(), importapp.StockUpdateRequest{
		FileName: header.Filename,
		Reader:   file,
		Size:     header.Size,
	})
	if err != nil {
		h.HandleError(c, importError(err))
		return
	}
	h.Success(c, result)
}

// upload opens the "file" form part, answering the request itself on failure
func (h *ImportHandler) upload(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return nil, nil, false
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		h.HandleError(c, importError(csvimport.ErrFileTooLarge))
		return nil, nil, false
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "file could not be read")
		return nil, nil, false
	}
	return file, header, true
}

// importError gives the reader's sentinel errors an import error code
func importError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrFileTooLarge):
		return shared.NewDomainError(csvimport.ErrCodeImportFileTooLarge, err.Error())
	case errors.Is(err, csvimport.ErrEmptyFile):
		return shared.NewDomainError(csvimport.ErrCodeImportEmptyFile, err.Error())
	case errors.Is(err, csvimport.ErrMissingHeader), errors.Is(err, csvimport.ErrNoWorksheet):
		return shared.NewDomainError(csvimport.ErrCodeImportInvalidFile, err.Error())
	}
	return err
}

// RegisterRoutes registers the upload routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/import")
	{
		imports.POST("/sales", h.ImportSales)
		imports.POST("/stock", h.UpdateStock)
	}
}
