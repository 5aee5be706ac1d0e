package importapp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/domain/trade"
	csvimport "github.com/balcao/backend/internal/infrastructure/import"
	"github.com/balcao/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// saleEmitter writes aggregates as sale headers plus lines. Aggregates are
// disjoint by (date, client), so they may be written in parallel.
type saleEmitter struct {
	repo        trade.SaleRepository
	concurrency int
	limiter     *rate.Limiter
	logger      *zap.Logger

	mu   sync.Mutex
	errs *csvimport.ErrorCollection
}

func newSaleEmitter(
	repo trade.SaleRepository,
	concurrency int,
	writesPerSecond float64,
	errs *csvimport.ErrorCollection,
	logger *zap.Logger,
) *saleEmitter {
	limit := rate.Inf
	if writesPerSecond > 0 {
		limit = rate.Limit(writesPerSecond)
	}
	return &saleEmitter{
		repo:        repo,
		concurrency: concurrency,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
		errs:        errs,
	}
}

// emitAll writes every aggregate whose client was resolved. A failed
// aggregate is recorded and skipped; the returned error is only ever the
// context's.
func (e *saleEmitter) emitAll(
	ctx context.Context,
	sales []*bulk.SaleAggregate,
	clients *ClientResolution,
	result *SalesImportResult,
) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_import", "emit",
		telemetry.WithAttribute(telemetry.SpanAttrAggregates, len(sales)),
	)
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, sale := range sales {
		if gctx.Err() != nil {
			break
		}
		clientID, ok := clients.ID(sale.ClientName)
		if !ok {
			e.mu.Lock()
			result.SalesFailed++
			e.mu.Unlock()
			e.logger.Debug("Sale skipped, client unresolved",
				zap.String("client", sale.ClientName),
				zap.String("date", sale.Date),
			)
			continue
		}

		sale := sale
		g.Go(func() error {
			items, err := e.emit(gctx, sale, clientID)
			e.mu.Lock()
			defer e.mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				result.SalesFailed++
				e.errs.AddPersistenceError(0, fmt.Sprintf("sale of %s for '%s'", sale.Date, sale.ClientName), err)
				e.logger.Error("Failed to write sale",
					zap.String("client", sale.ClientName),
					zap.String("date", sale.Date),
					zap.Error(err),
				)
				return nil
			}
			amount, profit := sale.Totals()
			result.SalesImported++
			result.ItemsImported += items
			result.ImportedAmount = result.ImportedAmount.Add(amount)
			result.ImportedProfit = result.ImportedProfit.Add(profit)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("emission stopped: %w", err)
	}
	telemetry.SetAttributes(span,
		"imported", result.SalesImported,
		telemetry.SpanAttrFailed, result.SalesFailed,
	)
	return nil
}

// emit writes one sale and its lines. When the line insert fails the header
// stays behind; there is no rollback.
func (e *saleEmitter) emit(ctx context.Context, sale *bulk.SaleAggregate, clientID uuid.UUID) (int, error) {
	soldAt, err := time.Parse(time.DateOnly, sale.Date)
	if err != nil {
		return 0, fmt.Errorf("date '%s' is not an ISO date", sale.Date)
	}

	amount, profit := sale.Totals()
	header, err := trade.NewSale(clientID, amount, profit, soldAt)
	if err != nil {
		return 0, err
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	if err := e.repo.CreateSale(ctx, header); err != nil {
		return 0, fmt.Errorf("create sale: %w", err)
	}

	lines := sale.Lines()
	items := make([]trade.SaleItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, trade.SaleItem{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			UnitProfit: line.UnitProfit(),
		})
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	if err := e.repo.CreateItems(ctx, header.ID, items); err != nil {
		return 0, fmt.Errorf("create items of sale %s: %w", header.ID, err)
	}
	return len(items), nil
}
