package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	_ "github.com/arix/server/cmd/server/docs" // swagger docs
	ginadapter "github.com/arix/server/internal/adapter/inbound/gin"
	"github.com/arix/server/internal/domain/creation"
	"github.com/arix/server/internal/domain/entitlement"
	"github.com/arix/server/internal/domain/generation"
	"github.com/arix/server/internal/domain/identity"
	"github.com/arix/server/internal/domain/payment"
	"github.com/arix/server/internal/infra/config"
	"github.com/arix/server/internal/port/outbound"
	"github.com/arix/server/internal/utils/metrics"
	"github.com/arix/server/internal/utils/middleware"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
	RateLimiter outbound.RateLimiterPort

	// Domains
	Resolver   *identity.Resolver
	Gate       *entitlement.Gate
	Generation *generation.Domain
	Creation   *creation.Domain
	Payment    *payment.Domain
}

// App represents the application.
type App struct {
	deps    *Dependencies
	router  *gin.Engine
	cleanup func()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	return &App{
		deps:    deps,
		router:  NewRouter(deps),
		cleanup: cleanup,
	}, nil
}

// NewRouter creates the Gin router with middleware and all routes.
func NewRouter(deps *Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger

	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// Recovery sits inside Logging so a recovered panic is logged as a 500
	// with the request's correlation ID.
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins...))

	ginadapter.RegisterSystemRoutes(r, deps.Registry)

	api := r.Group("/api", middleware.Auth(deps.Resolver, log))

	var limits []gin.HandlerFunc
	if cfg.RateLimit.Enabled && deps.RateLimiter != nil {
		limits = append(limits, middleware.RateLimitByUser(deps.RateLimiter, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	ginadapter.RegisterGenerationRoutes(api, ginadapter.NewGenerationHandler(deps.Generation), limits...)
	ginadapter.RegisterCreationRoutes(api, ginadapter.NewCreationHandler(deps.Creation))
	ginadapter.RegisterAccountRoutes(api, ginadapter.NewAccountHandler(deps.Gate, deps.Payment))

	return r
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger {
	return a.deps.Logger
}

// Stop releases connections and flushes the logger.
func (a *App) Stop() {
	if a.cleanup != nil {
		a.cleanup()
	}
}
