package importapp

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/domain/catalog"
	"github.com/balcao/backend/internal/domain/shared"
	csvimport "github.com/balcao/backend/internal/infrastructure/import"
	"github.com/balcao/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Accepted header aliases of a stock sheet
var (
	stockNameColumns  = []string{"Produto", "produto", "Name"}
	stockPriceColumns = []string{"Preço", "Preco", "Price"}
	stockCountColumns = []string{"Stock", "stock", "Quantidade"}
)

// StockUpdateRequest is one stock sheet to apply
type StockUpdateRequest struct {
	FileName string
	Reader   io.Reader
	Size     int64
}

// StockUpdateResult summarizes a stock refresh
type StockUpdateResult struct {
	HistoryID   *uuid.UUID           `json:"history_id,omitempty"`
	FileName    string               `json:"file_name"`
	TotalRows   int                  `json:"total_rows"`
	Updated     int                  `json:"updated"`
	NotFound    int                  `json:"not_found"`
	Failed      int                  `json:"failed"`
	Skipped     int                  `json:"skipped"`
	NotFoundIn  []string             `json:"not_found_names,omitempty"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	TotalErrors int                  `json:"total_errors"`
	Duration    time.Duration        `json:"duration"`
}

// StockUpdateService refreshes on-hand stock and sell prices from a stock
// sheet. Buy prices are never touched.
type StockUpdateService struct {
	productRepo catalog.ProductRepository
	history     *ImportHistoryService
	maxErrors   int
	maxFileSize int64
	logger      *zap.Logger
}

// NewStockUpdateService creates a StockUpdateService. history may be nil.
func NewStockUpdateService(
	productRepo catalog.ProductRepository,
	history *ImportHistoryService,
	maxErrors int,
	maxFileSize int64,
	logger *zap.Logger,
) *StockUpdateService {
	return &StockUpdateService{
		productRepo: productRepo,
		history:     history,
		maxErrors:   maxErrors,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Update applies the sheet row by row. Each name is matched against the
// catalog ignoring case and surrounding spaces; the first match is updated.
func (s *StockUpdateService) Update(ctx context.Context, req StockUpdateRequest) (*StockUpdateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_update", "run",
		telemetry.WithAttribute(telemetry.SpanAttrSource, req.FileName),
	)
	defer span.End()

	started := time.Now()
	result := &StockUpdateResult{FileName: req.FileName}

	table, err := csvimport.ReadTable(req.FileName, req.Reader, s.maxFileSize)
	if err == nil && !table.HasAnyHeader(stockNameColumns...) {
		err = shared.NewDomainError(csvimport.ErrCodeImportMissingHeader,
			fmt.Sprintf("missing product column, expected one of %v", stockNameColumns))
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result.TotalRows = len(table.Rows)
	historyID := s.openHistory(ctx, req, len(table.Rows))
	result.HistoryID = historyID

	errs := csvimport.NewErrorCollection(s.maxErrors)
	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			s.failHistory(ctx, historyID, err)
			return nil, err
		}

		name := row.First(stockNameColumns...)
		if name == "" {
			result.Skipped++
			continue
		}
		price := bulk.ParseUnitPrice(row.First(stockPriceColumns...))
		stock := bulk.ParseStock(row.First(stockCountColumns...))

		products, err := s.productRepo.FindByNameInsensitive(ctx, name)
		if err != nil {
			result.Failed++
			errs.AddPersistenceError(row.LineNumber, fmt.Sprintf("lookup of '%s'", name), err)
			s.logger.Error("Product lookup failed", zap.String("product", name), zap.Error(err))
			continue
		}
		if len(products) == 0 {
			result.NotFound++
			result.NotFoundIn = append(result.NotFoundIn, name)
			errs.AddReferenceError(row.LineNumber, stockNameColumns[0], name, "product")
			continue
		}

		product := &products[0]
		if err := product.Restock(stock, price); err != nil {
			result.Failed++
			errs.Add(csvimport.NewRowErrorWithValue(row.LineNumber, stockPriceColumns[0], shared.ErrorCode(err), err.Error(), price.String()))
			continue
		}
		if err := s.productRepo.UpdateStockAndPrice(ctx, product.ID, product.Stock, product.SellPrice); err != nil {
			result.Failed++
			errs.AddPersistenceError(row.LineNumber, fmt.Sprintf("update of '%s'", name), err)
			s.logger.Error("Stock update failed", zap.String("product", name), zap.Error(err))
			continue
		}
		result.Updated++
	}

	result.Errors = errs.Errors()
	result.TotalErrors = errs.TotalCount()
	result.Duration = time.Since(started)

	if historyID != nil {
		if err := s.history.CompleteImport(ctx, *historyID, result.Updated, result.Failed, result.NotFound+result.Skipped, errs.Errors()); err != nil {
			s.logger.Warn("Failed to update import history", zap.Error(err))
		}
	}

	telemetry.SetAttributes(span,
		"updated", result.Updated,
		telemetry.SpanAttrFailed, result.Failed,
		"not_found", result.NotFound,
	)
	s.logger.Info("Stock update finished",
		zap.String("file", req.FileName),
		zap.Int("updated", result.Updated),
		zap.Int("not_found", result.NotFound),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *StockUpdateService) openHistory(ctx context.Context, req StockUpdateRequest, totalRows int) *uuid.UUID {
	if s.history == nil {
		return nil
	}
	fileName := req.FileName
	if fileName == "" {
		fileName = "upload"
	}
	h, err := s.history.CreateHistory(ctx, bulk.ImportEntityStock, fileName, req.Size)
	if err != nil {
		s.logger.Warn("Failed to record import history", zap.Error(err))
		return nil
	}
	if err := s.history.StartProcessing(ctx, h.ID, totalRows); err != nil {
		s.logger.Warn("Failed to update import history", zap.Error(err))
	}
	return &h.ID
}

func (s *StockUpdateService) failHistory(ctx context.Context, id *uuid.UUID, cause error) {
	if id == nil {
		return
	}
	rowErr := csvimport.NewRowError(0, "", csvimport.ErrCodeImportUnknown, cause.Error())
	if err := s.history.FailImport(context.WithoutCancel(ctx), *id, []csvimport.RowError{rowErr}); err != nil {
		s.logger.Warn("Failed to update import history", zap.Error(err))
	}
}
