package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/followups/internal/middleware"
	"github.com/jwalitptl/followups/pkg/errors"
	"github.com/jwalitptl/followups/pkg/httputil"
	"github.com/jwalitptl/followups/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type PublicHandler interface {
	RegisterRoutes(gin.IRoutes, ...gin.HandlerFunc)
}

type HealthHandler interface {
	RegisterRoutes(gin.IRoutes)
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	followUpH Handler
	publicH   PublicHandler
	healthH   HealthHandler
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	config    RouterConfig
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	MaxBodyBytes   int64
	TrustedProxies []string
	MetricsEnabled bool
	MetricsPath    string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	followUpH Handler,
	publicH PublicHandler,
	healthH HealthHandler,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	config RouterConfig,
) (*Router, error) {
	engine := gin.New() // Use New() instead of Default() for more control
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}

	r := &Router{
		engine:    engine,
		auth:      auth,
		followUpH: followUpH,
		publicH:   publicH,
		healthH:   healthH,
		metrics:   m,
		gatherer:  gatherer,
		config:    config,
	}

	// Add core middlewares
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(sizeLimit),
		middleware.ErrorHandler(),
	)

	engine.NoRoute(func(c *gin.Context) {
		httputil.RespondWithError(c, errors.NotFound("page", nil))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, httputil.NewErrorResponse("method not allowed"))
	})

	return r, nil
}

func (r *Router) Setup() {
	r.healthH.RegisterRoutes(r.engine)

	if r.config.MetricsEnabled && r.gatherer != nil {
		r.engine.GET(r.config.MetricsPath, gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	// Public routes
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  r.config.RateLimit,
		Burst: r.config.RateBurst,
	})
	r.publicH.RegisterRoutes(r.engine,
		limiter.RateLimit(),
		middleware.Cache(middleware.NoStoreCacheConfig()),
	)

	// Protected routes
	protected := r.engine.Group("")
	protected.Use(r.auth.Authenticate())
	r.followUpH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
