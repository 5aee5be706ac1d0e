package importapp

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/domain/catalog"
	"github.com/balcao/backend/internal/domain/shared"
	"github.com/balcao/backend/internal/domain/trade"
	csvimport "github.com/balcao/backend/internal/infrastructure/import"
	"github.com/balcao/backend/internal/infrastructure/logger"
	"github.com/balcao/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrCatalogUnavailable is returned when the product catalog cannot be read.
// Nothing can be reconciled without it, so the run stops before any write.
var ErrCatalogUnavailable = shared.NewDomainError(csvimport.ErrCodeImportCatalog, "product catalog could not be loaded")

// SalesColumns names the spreadsheet columns of a sales export
type SalesColumns struct {
	Date      string
	Client    string
	Product   string
	UnitPrice string
	Quantity  string
}

// DefaultSalesColumns returns the column names of the shop's export
func DefaultSalesColumns() SalesColumns {
	return SalesColumns{
		Date:      "Data",
		Client:    "Nome do Cliente",
		Product:   "Produto",
		UnitPrice: "Preço Unitário",
		Quantity:  "Quantidade",
	}
}

// SalesImportOptions tunes a SalesImportService
type SalesImportOptions struct {
	Columns            SalesColumns
	EmitConcurrency    int
	MaxWritesPerSecond float64 // 0 disables throttling
	MaxErrors          int
	MaxFileSize        int64 // 0 disables the size check
}

// DefaultSalesImportOptions returns sequential, unthrottled options
func DefaultSalesImportOptions() SalesImportOptions {
	return SalesImportOptions{
		Columns:         DefaultSalesColumns(),
		EmitConcurrency: 1,
		MaxErrors:       100,
		MaxFileSize:     10 << 20,
	}
}

// SalesImportRequest is one data drop to reconcile
type SalesImportRequest struct {
	FileName string
	Reader   io.Reader
	Size     int64
	DryRun   bool
}

// SalesImportResult summarizes a sales import run
type SalesImportResult struct {
	RunID              uuid.UUID            `json:"run_id"`
	HistoryID          *uuid.UUID           `json:"history_id,omitempty"`
	FileName           string               `json:"file_name"`
	Format             string               `json:"format"`
	DryRun             bool                 `json:"dry_run"`
	RenameTableVersion string               `json:"rename_table_version"`
	TotalRows          int                  `json:"total_rows"`
	MalformedRows      int                  `json:"malformed_rows"`
	UnrecognizedRows   int                  `json:"unrecognized_rows"`
	UnresolvedDates    int                  `json:"unresolved_dates"`
	DistinctClients    int                  `json:"distinct_clients"`
	ClientsCreated     int                  `json:"clients_created"`
	ClientsToCreate    int                  `json:"clients_to_create,omitempty"`
	ClientsFailed      int                  `json:"clients_failed"`
	SalesPlanned       int                  `json:"sales_planned"`
	SalesImported      int                  `json:"sales_imported"`
	SalesFailed        int                  `json:"sales_failed"`
	ItemsImported      int                  `json:"items_imported"`
	ImportedAmount     decimal.Decimal      `json:"imported_amount"`
	ImportedProfit     decimal.Decimal      `json:"imported_profit"`
	UnrecognizedNames  map[string]int       `json:"unrecognized_names,omitempty"`
	Errors             []csvimport.RowError `json:"errors,omitempty"`
	TotalErrors        int                  `json:"total_errors"`
	IsTruncated        bool                 `json:"is_truncated,omitempty"`
	StartedAt          time.Time            `json:"started_at"`
	Duration           time.Duration        `json:"duration"`
}

// SalesImportService reconciles a sales export against the catalog and the
// client registry, then writes one sale per client per day.
type SalesImportService struct {
	productRepo catalog.ProductRepository
	saleRepo    trade.SaleRepository
	clients     *ClientResolver
	history     *ImportHistoryService
	renames     bulk.RenameTable
	opts        SalesImportOptions
	logger      *zap.Logger
}

// NewSalesImportService creates a SalesImportService. history may be nil,
// in which case runs are not recorded.
func NewSalesImportService(
	productRepo catalog.ProductRepository,
	saleRepo trade.SaleRepository,
	clients *ClientResolver,
	history *ImportHistoryService,
	renames bulk.RenameTable,
	opts SalesImportOptions,
	logger *zap.Logger,
) *SalesImportService {
	if opts.EmitConcurrency < 1 {
		opts.EmitConcurrency = 1
	}
	if opts.MaxErrors < 1 {
		opts.MaxErrors = 100
	}
	return &SalesImportService{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		clients:     clients,
		history:     history,
		renames:     renames,
		opts:        opts,
		logger:      logger,
	}
}

// Import reads the data drop and reconciles it. Row and aggregate failures
// are reported in the result; an error is returned only when the file cannot
// be read, the catalog cannot be loaded or ctx is cancelled.
func (s *SalesImportService) Import(ctx context.Context, req SalesImportRequest) (*SalesImportResult, error) {
	runID := uuid.New()
	ctx, log := logger.WithRunID(ctx, s.logger, runID.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_import", "run",
		telemetry.WithAttribute(telemetry.SpanAttrRunID, runID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrSource, req.FileName),
		telemetry.WithAttribute(telemetry.SpanAttrDryRun, req.DryRun),
	)
	defer span.End()

	result := &SalesImportResult{
		RunID:              runID,
		FileName:           req.FileName,
		DryRun:             req.DryRun,
		RenameTableVersion: s.renames.Version(),
		ImportedAmount:     decimal.Zero,
		ImportedProfit:     decimal.Zero,
		StartedAt:          time.Now(),
	}

	historyID := s.openHistory(ctx, log, req)
	result.HistoryID = historyID

	table, err := csvimport.ReadTable(req.FileName, req.Reader, s.opts.MaxFileSize)
	if err == nil {
		err = s.checkHeaders(table)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		s.failHistory(ctx, log, historyID, csvimport.ErrCodeImportInvalidFile, err)
		return nil, err
	}
	result.Format = table.Format

	rows := s.rawRows(table)
	result.TotalRows = len(rows)
	telemetry.SetAttribute(span, telemetry.SpanAttrTotalRows, len(rows))
	s.startHistory(ctx, log, historyID, len(rows))

	index, err := s.loadCatalog(ctx, log)
	if err != nil {
		telemetry.RecordError(span, err)
		s.failHistory(ctx, log, historyID, csvimport.ErrCodeImportCatalog, err)
		return nil, err
	}

	errs := csvimport.NewErrorCollection(s.opts.MaxErrors)

	names := bulk.DistinctClients(rows)
	result.DistinctClients = len(names)
	resolution, err := s.clients.Resolve(ctx, names, req.DryRun)
	if err != nil {
		telemetry.RecordError(span, err)
		s.failHistory(ctx, log, historyID, csvimport.ErrCodeImportUnknown, err)
		return nil, err
	}
	result.ClientsCreated = len(resolution.Created)
	result.ClientsToCreate = len(resolution.WouldCreate)
	result.ClientsFailed = len(resolution.Failed)
	for _, name := range sortedKeys(resolution.Failed) {
		errs.AddClientError(0, name, resolution.Failed[name])
	}

	aggregation := s.aggregate(ctx, log, rows, index, errs)
	result.MalformedRows = aggregation.Count(bulk.DropMalformed)
	result.UnrecognizedRows = aggregation.Count(bulk.DropUnrecognized)
	result.UnresolvedDates = len(aggregation.UnresolvedDates)
	result.UnrecognizedNames = aggregation.UnrecognizedNames()
	result.SalesPlanned = len(aggregation.Sales)
	telemetry.SetAttribute(span, telemetry.SpanAttrAggregates, len(aggregation.Sales))

	if req.DryRun {
		for _, sale := range aggregation.Sales {
			amount, profit := sale.Totals()
			result.ImportedAmount = result.ImportedAmount.Add(amount)
			result.ImportedProfit = result.ImportedProfit.Add(profit)
		}
	} else {
		em := newSaleEmitter(s.saleRepo, s.opts.EmitConcurrency, s.opts.MaxWritesPerSecond, errs, log)
		if err := em.emitAll(ctx, aggregation.Sales, resolution, result); err != nil {
			s.finish(result, errs)
			telemetry.RecordError(span, err)
			s.failHistory(ctx, log, historyID, csvimport.ErrCodeImportUnknown, err)
			return result, err
		}
	}

	s.finish(result, errs)
	s.completeHistory(ctx, log, historyID, result, errs)

	log.Info("Sales import finished",
		zap.String("file", req.FileName),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("malformed", result.MalformedRows),
		zap.Int("unrecognized", result.UnrecognizedRows),
		zap.Int("unresolved_dates", result.UnresolvedDates),
		zap.Int("clients_created", result.ClientsCreated),
		zap.Int("sales_planned", result.SalesPlanned),
		zap.Int("sales_imported", result.SalesImported),
		zap.Int("sales_failed", result.SalesFailed),
		zap.Int("items_imported", result.ItemsImported),
		zap.String("amount", result.ImportedAmount.StringFixed(2)),
		zap.String("profit", result.ImportedProfit.StringFixed(2)),
		zap.Duration("duration", result.Duration),
	)
	telemetry.SetOK(span)
	return result, nil
}

func (s *SalesImportService) checkHeaders(table *csvimport.Table) error {
	cols := s.opts.Columns
	missing := table.MissingHeaders(cols.Date, cols.Client, cols.Product)
	if len(missing) == 0 {
		return nil
	}
	return shared.NewDomainError(csvimport.ErrCodeImportMissingHeader,
		fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
}

// rawRows maps table rows onto sale rows. Workbook date cells
// arrive as serial numbers and are rendered as DD-MM-YYYY first.
func (s *SalesImportService) rawRows(table *csvimport.Table) []bulk.RawSaleRow {
	cols := s.opts.Columns
	rows := make([]bulk.RawSaleRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		date := row.Get(cols.Date)
		if table.Format == csvimport.FormatXLSX {
			date = csvimport.SerialDate(date)
		}
		rows = append(rows, bulk.NewRawSaleRow(
			row.LineNumber,
			date,
			row.Get(cols.Client),
			row.Get(cols.Product),
			row.Get(cols.UnitPrice),
			row.Get(cols.Quantity),
		))
	}
	return rows
}

func (s *SalesImportService) loadCatalog(ctx context.Context, log *zap.Logger) (*catalog.Index, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_import", "load_catalog")
	defer span.End()

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to load product catalog", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	index := catalog.NewIndex(products)
	for _, key := range index.Duplicates() {
		log.Warn("Duplicate catalog name, the last product wins", zap.String("name", key))
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrProducts, index.Len())
	log.Debug("Catalog loaded", zap.Int("products", index.Len()))
	return index, nil
}

func (s *SalesImportService) aggregate(
	ctx context.Context,
	log *zap.Logger,
	rows []bulk.RawSaleRow,
	index *catalog.Index,
	errs *csvimport.ErrorCollection,
) *bulk.AggregationResult {
	_, span := telemetry.StartServiceSpan(ctx, "sales_import", "aggregate")
	defer span.End()

	result := bulk.NewAggregator(s.renames, index).Aggregate(rows)
	cols := s.opts.Columns

	for _, d := range result.Dropped {
		switch d.Reason {
		case bulk.DropMalformed:
			column := map[string]string{"date": cols.Date, "client": cols.Client, "product": cols.Product}[d.Field]
			errs.AddRequiredError(d.Line, column)
			log.Debug("Row dropped", zap.Int("line", d.Line), zap.String("missing", d.Field))
		case bulk.DropUnrecognized:
			errs.AddReferenceError(d.Line, cols.Product, d.ProductName, "product")
			log.Debug("Row dropped",
				zap.Int("line", d.Line),
				zap.String("product", d.ProductName),
				zap.String("canonical", d.CanonicalName),
			)
		}
	}

	unrecognized := result.UnrecognizedNames()
	for _, name := range sortedKeys(unrecognized) {
		log.Warn("Product not in catalog", zap.String("name", name), zap.Int("rows", unrecognized[name]))
	}

	if len(result.UnresolvedDates) > 0 {
		dates := make(map[int]string, len(rows))
		for _, r := range rows {
			dates[r.Line] = r.Date
		}
		for _, line := range result.UnresolvedDates {
			errs.AddDateWarning(line, cols.Date, dates[line])
		}
		log.Warn("Dates kept verbatim", zap.Ints("lines", result.UnresolvedDates))
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAggregates, len(result.Sales),
		"dropped", len(result.Dropped),
	)
	return result
}

func (s *SalesImportService) finish(result *SalesImportResult, errs *csvimport.ErrorCollection) {
	result.Errors = errs.Errors()
	result.TotalErrors = errs.TotalCount()
	result.IsTruncated = errs.IsTruncated()
	result.Duration = time.Since(result.StartedAt)
}

func (s *SalesImportService) openHistory(ctx context.Context, log *zap.Logger, req SalesImportRequest) *uuid.UUID {
	if s.history == nil || req.DryRun {
		return nil
	}
	fileName := req.FileName
	if fileName == "" {
		fileName = "upload"
	}
	h, err := s.history.CreateHistory(ctx, bulk.ImportEntitySales, fileName, req.Size)
	if err != nil {
		log.Warn("Failed to record import history", zap.Error(err))
		return nil
	}
	return &h.ID
}

func (s *SalesImportService) startHistory(ctx context.Context, log *zap.Logger, id *uuid.UUID, totalRows int) {
	if id == nil {
		return
	}
	if err := s.history.StartProcessing(ctx, *id, totalRows); err != nil {
		log.Warn("Failed to update import history", zap.Error(err))
	}
}

func (s *SalesImportService) completeHistory(ctx context.Context, log *zap.Logger, id *uuid.UUID, result *SalesImportResult, errs *csvimport.ErrorCollection) {
	if id == nil {
		return
	}
	skipped := result.MalformedRows + result.UnrecognizedRows
	if err := s.history.CompleteImport(ctx, *id, result.SalesImported, result.SalesFailed, skipped, errs.Errors()); err != nil {
		log.Warn("Failed to update import history", zap.Error(err))
	}
}

func (s *SalesImportService) failHistory(ctx context.Context, log *zap.Logger, id *uuid.UUID, code string, cause error) {
	if id == nil {
		return
	}
	// the run context may already be cancelled
	ctx = context.WithoutCancel(ctx)
	rowErr := csvimport.NewRowError(0, "", code, cause.Error())
	if err := s.history.FailImport(ctx, *id, []csvimport.RowError{rowErr}); err != nil {
		log.Warn("Failed to update import history", zap.Error(err))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
