// Package bootstrap wires configuration, infrastructure and application
// services shared by the server and the import CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	importapp "github.com/balcao/backend/internal/application/import"
	reportapp "github.com/balcao/backend/internal/application/report"
	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/infrastructure/cache"
	"github.com/balcao/backend/internal/infrastructure/config"
	"github.com/balcao/backend/internal/infrastructure/logger"
	"github.com/balcao/backend/internal/infrastructure/persistence"
	"github.com/balcao/backend/internal/infrastructure/renames"
	"github.com/balcao/backend/internal/infrastructure/storage"
	"github.com/balcao/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrStorageDisabled is returned when object storage is used without being configured
var ErrStorageDisabled = errors.New("object storage is not enabled; set storage.enabled and storage.bucket")

// NewLogger builds the process logger from the log section
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// Container holds the long-lived dependencies of one process
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Tracer *telemetry.TracerProvider
	DB     *persistence.Database

	Renames bulk.RenameTable

	Products *persistence.GormProductRepository
	Clients  *persistence.GormClientRepository
	Sales    *persistence.GormSaleRepository
	History  *persistence.GormImportHistoryRepository

	HistoryService *importapp.ImportHistoryService
	SalesImport    *importapp.SalesImportService
	StockUpdate    *importapp.StockUpdateService
	SalesReset     *importapp.SalesResetService
	SalesSummary   *reportapp.SalesSummaryService

	store storage.ObjectStore
}

// New opens the database, loads the rename table and builds every service.
// The caller owns the container and must Close it.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.Telemetry.ServiceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	table, err := renames.Load(cfg.Import.RenameTablePath)
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, fmt.Errorf("failed to load rename table: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		Logger:   log,
		Tracer:   tracer,
		DB:       db,
		Renames:  table,
		Products: persistence.NewGormProductRepository(db.DB),
		Clients:  persistence.NewGormClientRepository(db.DB),
		Sales:    persistence.NewGormSaleRepository(db.DB),
		History:  persistence.NewGormImportHistoryRepository(db.DB),
	}

	c.HistoryService = importapp.NewImportHistoryService(c.History)
	resolver := importapp.NewClientResolver(
		c.Clients,
		cache.NewClientIDCache(cfg.Import.ClientCacheTTL),
		cfg.Import.ClientLocation,
		log,
	)
	c.SalesImport = importapp.NewSalesImportService(
		c.Products,
		c.Sales,
		resolver,
		c.HistoryService,
		table,
		SalesImportOptions(cfg.Import),
		log,
	)
	c.StockUpdate = importapp.NewStockUpdateService(c.Products, c.HistoryService, cfg.Import.MaxErrors, cfg.Import.MaxFileSize, log)
	c.SalesReset = importapp.NewSalesResetService(c.Sales, log)
	c.SalesSummary = reportapp.NewSalesSummaryService(c.Sales, log)

	log.Info("Backend ready",
		zap.String("driver", db.Driver()),
		zap.String("rename_table", table.Version()),
		zap.Int("renames", table.Len()),
	)
	return c, nil
}

// SalesImportOptions maps the import section onto service options
func SalesImportOptions(cfg config.ImportConfig) importapp.SalesImportOptions {
	return importapp.SalesImportOptions{
		Columns: importapp.SalesColumns{
			Date:      cfg.Columns.Date,
			Client:    cfg.Columns.Client,
			Product:   cfg.Columns.Product,
			UnitPrice: cfg.Columns.UnitPrice,
			Quantity:  cfg.Columns.Quantity,
		},
		EmitConcurrency:    cfg.EmitConcurrency,
		MaxWritesPerSecond: cfg.MaxWritesPerSecond,
		MaxErrors:          cfg.MaxErrors,
		MaxFileSize:        cfg.MaxFileSize,
	}
}

// ObjectStore returns the S3 store for data drops, creating it on first use
func (c *Container) ObjectStore(ctx context.Context) (storage.ObjectStore, error) {
	if c.store != nil {
		return c.store, nil
	}
	if !c.Config.Storage.Enabled {
		return nil, ErrStorageDisabled
	}
	store, err := storage.NewS3ObjectStorage(ctx, &c.Config.Storage, storage.WithLogger(c.Logger))
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

// UseObjectStore replaces the object store, e.g. with an in-memory one
func (c *Container) UseObjectStore(store storage.ObjectStore) {
	c.store = store
}

// Close flushes pending spans and releases the database
func (c *Container) Close(ctx context.Context) error {
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if err := c.Tracer.Shutdown(flushCtx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	if stats, err := c.DB.Stats(); err == nil {
		c.Logger.Debug("Database pool at shutdown",
			zap.Int("open", stats.OpenConnections),
			zap.Int("in_use", stats.InUse),
			zap.Int64("wait_count", stats.WaitCount),
			zap.Duration("wait_duration", stats.WaitDuration),
		)
	}
	if err := c.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	return errors.Join(errs...)
}
