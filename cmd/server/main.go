package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/balcao/backend/internal/bootstrap"
	"github.com/balcao/backend/internal/infrastructure/config"
	"github.com/balcao/backend/internal/infrastructure/logger"
	"github.com/balcao/backend/internal/interfaces/http/handler"
	"github.com/balcao/backend/internal/interfaces/http/middleware"
	"github.com/balcao/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Balcao Backend API
//	@version		1.0
//	@description	Sales data-drop reconciliation, stock refresh and sales reporting for the shop backend

//	@BasePath	/api/v1

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting balcao backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	app, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize backend", zap.Error(err))
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			log.Error("Error during shutdown", zap.Error(err))
		}
	}()

	engine, err := newEngine(app, version)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newEngine builds the gin engine with every balcao route registered
func newEngine(app *bootstrap.Container, version string) (*gin.Engine, error) {
	cfg := app.Config
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Tracing:        cfg.Telemetry.Enabled,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimit:      cfg.HTTP.RateLimit,
		RateBurst:      cfg.HTTP.RateBurst,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, app.Logger)
	if err != nil {
		return nil, err
	}

	router.NewRouter(engine, router.WithGroupMiddleware(middleware.BodyLimit(uploadBodyLimit(cfg)))).
		RegisterRoot(handler.NewSystemHandler(cfg.App.Name, version, app.DB)).
		Register(handler.NewImportHandler(app.SalesImport, app.StockUpdate, cfg.Import.MaxFileSize)).
		Register(handler.NewImportHistoryHandler(app.HistoryService)).
		Register(handler.NewReportHandler(app.SalesSummary)).
		Setup()

	return engine, nil
}

// uploadBodyLimit is the API body limit. Uploads carry multipart overhead
// on top of the file itself, so the limit never drops below the file limit
// plus 1MB.
func uploadBodyLimit(cfg *config.Config) int64 {
	return max(cfg.HTTP.MaxBodySize, cfg.Import.MaxFileSize+(1<<20))
}
