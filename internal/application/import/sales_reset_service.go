package importapp

import (
	"context"
	"fmt"

	"github.com/balcao/backend/internal/domain/trade"
	"github.com/balcao/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SalesResetService wipes recorded sales so a data drop can be imported again
type SalesResetService struct {
	saleRepo trade.SaleRepository
	logger   *zap.Logger
}

// NewSalesResetService creates a SalesResetService
func NewSalesResetService(saleRepo trade.SaleRepository, logger *zap.Logger) *SalesResetService {
	return &SalesResetService{saleRepo: saleRepo, logger: logger}
}

// Reset deletes every sale line and then every sale
func (s *SalesResetService) Reset(ctx context.Context) (trade.DeleteResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_reset", "run")
	defer span.End()

	res, err := s.saleRepo.DeleteAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to clear sales", zap.Error(err))
		return trade.DeleteResult{}, fmt.Errorf("failed to clear sales: %w", err)
	}

	telemetry.SetAttributes(span, "items_deleted", res.ItemsDeleted, "sales_deleted", res.SalesDeleted)
	s.logger.Warn("Sales cleared",
		zap.Int64("items_deleted", res.ItemsDeleted),
		zap.Int64("sales_deleted", res.SalesDeleted),
	)
	return res, nil
}
