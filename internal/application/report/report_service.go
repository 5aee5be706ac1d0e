package reportapp

import (
	"context"
	"fmt"
	"time"

	"github.com/balcao/backend/internal/domain/report"
	"github.com/balcao/backend/internal/domain/trade"
	"github.com/balcao/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// maxTopN caps the product ranking so a request cannot scan the whole catalog
const maxTopN = 100

// SalesSummaryRequest selects the period of a summary. A named Range wins
// over From/To; when both From and To are set they form an explicit range.
type SalesSummaryRequest struct {
	Range string     `form:"range"`
	From  *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To    *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	TopN  int        `form:"top_n" binding:"omitempty,min=1,max=100"`
}

// SalesSummaryService provides the sales headline figures of a period
type SalesSummaryService struct {
	saleRepo trade.SaleRepository
	now      func() time.Time
	logger   *zap.Logger
}

// NewSalesSummaryService creates a SalesSummaryService
func NewSalesSummaryService(saleRepo trade.SaleRepository, logger *zap.Logger) *SalesSummaryService {
	return &SalesSummaryService{
		saleRepo: saleRepo,
		now:      time.Now,
		logger:   logger,
	}
}

// Period resolves the requested period
func (s *SalesSummaryService) Period(req SalesSummaryRequest) (report.Period, error) {
	if req.Range == "" && req.From != nil && req.To != nil {
		return report.NewPeriod(*req.From, *req.To)
	}
	return report.ParseRange(req.Range, s.now())
}

// Summary returns revenue, profit, margin, sale count, the best day and
// the best-selling products of the requested period
func (s *SalesSummaryService) Summary(ctx context.Context, req SalesSummaryRequest) (*report.SalesSummary, error) {
	period, err := s.Period(req)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = report.DefaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "report", "sales_summary",
		telemetry.WithAttribute(telemetry.SpanAttrRange, req.Range),
	)
	defer span.End()

	sales, err := s.saleRepo.FindBetween(ctx, period.From, period.To)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	summary := report.Summarize(period, sales)

	top, err := s.saleRepo.TopProducts(ctx, period.From, period.To, topN)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	if top != nil {
		summary.TopProducts = top
	}

	telemetry.SetAttributes(span, "sale_count", summary.SaleCount, telemetry.SpanAttrProducts, len(summary.TopProducts))
	s.logger.Debug("Sales summary computed",
		zap.Time("from", period.From),
		zap.Time("to", period.To),
		zap.Int("sales", summary.SaleCount),
	)
	return &summary, nil
}
