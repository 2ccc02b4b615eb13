package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pharmaops/backend/internal/infrastructure/config"
	"github.com/pharmaops/backend/internal/infrastructure/logger"
	"github.com/pharmaops/backend/internal/interfaces/http/dto"
	"github.com/pharmaops/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// DefaultMaxBodySize bounds request bodies when EngineConfig leaves it unset
const DefaultMaxBodySize int64 = 1 << 20

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
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

// Use adds middleware to the versioned API group only
func (r *Router) Use(handlers ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, handlers...)
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// BasePath returns the prefix of the versioned API group
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineConfig holds what the engine-wide middleware chain needs
type EngineConfig struct {
	Env         string
	HTTP        config.HTTPConfig
	ServiceName string
	Tracing     bool
	Meter       metric.Meter
	MaxBodySize int64
	Health      gin.HandlerFunc
	Logger      *zap.Logger
}

// NewEngine builds a gin engine with recovery, request logging, security
// headers, CORS, tracing, HTTP metrics and a body size limit. Unknown
// routes answer with the standard error envelope.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(cors.New(corsConfig(cfg.HTTP)))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Tracing,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(cfg.Meter))
	engine.Use(middleware.BodyLimit(maxBody))

	if cfg.Health != nil {
		engine.GET("/health", cfg.Health)
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "route not found", middleware.GetRequestID(c)))
	})
	return engine
}

// APIMiddleware returns the principal middleware for the API group. A JWT
// secret enables bearer tokens; without one, non-production environments
// fall back to the X-Pharmacy-ID header and production rejects everything.
func APIMiddleware(env string, validator middleware.TokenValidator, log *zap.Logger, skipPaths ...string) []gin.HandlerFunc {
	var auth gin.HandlerFunc
	switch {
	case validator != nil:
		auth = middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			Validator: validator,
			SkipPaths: skipPaths,
			Logger:    log,
		})
	case env != "production":
		auth = middleware.HeaderPrincipalMiddleware(skipPaths...)
	default:
		auth = func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "authentication is not configured", middleware.GetRequestID(c)))
		}
	}
	return []gin.HandlerFunc{auth, middleware.SpanAttributes()}
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     cfg.CORSAllowMethods,
		AllowHeaders:     cfg.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(c.AllowMethods) == 0 {
		c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowHeaders) == 0 {
		c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization",
			middleware.RequestIDHeader, middleware.PharmacyIDHeader}
	}
	if len(cfg.CORSAllowOrigins) == 0 || slices.Contains(cfg.CORSAllowOrigins, "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.CORSAllowOrigins
	}
	return c
}
