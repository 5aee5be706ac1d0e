package handler

import (
	reportapp "github.com/balcao/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles report-related API endpoints
type ReportHandler struct {
	BaseHandler
	summary *reportapp.SalesSummaryService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(summary *reportapp.SalesSummaryService) *ReportHandler {
	return &ReportHandler{summary: summary}
}

// GetSalesSummary godoc
//
//	@Summary		Sales summary
//	@Description	Revenue, profit, margin, sale count, best day and best-selling products of a period
//	@Tags			reports
//	@ID				getSalesSummary
//	@Produce		json
//	@Param			range	query		string	false	"Named range (default: month)"	Enums(today, week, month, year)
//	@Param			from	query		string	false	"Explicit start day, format: YYYY-MM-DD"
//	@Param			to		query		string	false	"Explicit end day (inclusive), format: YYYY-MM-DD"
//	@Param			top_n	query		int		false	"Products to rank (default: 10, max: 100)"
//	@Success		200		{object}	APIResponse[report.SalesSummary]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/reports/sales-summary [get]
func (h *ReportHandler) GetSalesSummary(c *gin.Context) {
	var req reportapp.SalesSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid request parameters: "+err.Error())
		return
	}

	summary, err := h.summary.Summary(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// RegisterRoutes registers the report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/sales-summary", h.GetSalesSummary)
	}
}
