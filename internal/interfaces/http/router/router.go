package router

import (
	"fmt"

	"github.com/balcao/backend/internal/infrastructure/logger"
	"github.com/balcao/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// EngineConfig configures the middleware chain of the API engine
type EngineConfig struct {
	ServiceName    string
	Tracing        bool
	CORSOrigins    []string
	RateLimit      float64 // requests per second per client IP, 0 disables
	RateBurst      int
	TrustedProxies []string
}

// NewEngine creates a gin engine with the standard middleware chain:
// request logging, panic recovery, tracing, security headers, CORS and
// optional per-client rate limiting.
func NewEngine(cfg EngineConfig, log *zap.Logger) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.Tracing,
		}),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.SpanEnricher(),
		middleware.SpanErrorMarker(),
		middleware.Secure(),
		middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)),
	)
	if cfg.RateLimit > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)))
	}
	return engine, nil
}

// Router manages HTTP route registration
type Router struct {
	engine          *gin.Engine
	apiVersion      string
	groupMiddleware []gin.HandlerFunc
	roots           []RouteRegistrar
	registrars      []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithGroupMiddleware adds middleware that only runs for versioned API routes
func WithGroupMiddleware(handlers ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.groupMiddleware = append(r.groupMiddleware, handlers...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be mounted under the versioned API group
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// RegisterRoot adds a RouteRegistrar mounted at the engine root, such as health checks
func (r *Router) RegisterRoot(registrar RouteRegistrar) *Router {
	r.roots = append(r.roots, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	for _, registrar := range r.roots {
		registrar.RegisterRoutes(&r.engine.RouterGroup)
	}

	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.groupMiddleware) > 0 {
		api.Use(r.groupMiddleware...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
