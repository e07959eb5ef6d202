// Package app wires configuration, storage and services into an HTTP
// engine.
package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/followups/internal/config"
	followupHandler "github.com/jwalitptl/followups/internal/handler/followup"
	"github.com/jwalitptl/followups/internal/handler/health"
	publicHandler "github.com/jwalitptl/followups/internal/handler/public"
	"github.com/jwalitptl/followups/internal/middleware"
	"github.com/jwalitptl/followups/internal/repository/postgres"
	"github.com/jwalitptl/followups/internal/router"
	"github.com/jwalitptl/followups/internal/service/access"
	clinicService "github.com/jwalitptl/followups/internal/service/clinic"
	followupService "github.com/jwalitptl/followups/internal/service/followup"
	publicService "github.com/jwalitptl/followups/internal/service/public"
	"github.com/jwalitptl/followups/pkg/auth"
	"github.com/jwalitptl/followups/pkg/metrics"
	"github.com/jwalitptl/followups/pkg/validator"
)

const metricsNamespace = "followups"

type App struct {
	Engine    *gin.Engine
	Clinics   *clinicService.Service
	FollowUps *followupService.Service
	Public    *publicService.Service
	Metrics   *metrics.Metrics
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now in every service.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds the application on db. Metrics are registered on reg and
// served from it when enabled.
func New(cfg *config.Config, db *sqlx.DB, reg *prometheus.Registry, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	m := metrics.New(metricsNamespace, reg)
	v := validator.New()

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	clinicRepo := postgres.NewClinicRepository(base)
	profileRepo := postgres.NewUserProfileRepository(base)
	followUpRepo := postgres.NewFollowUpRepository(base)
	viewLogRepo := postgres.NewViewLogRepository(base)

	// Initialize services
	gate := access.NewGate(profileRepo, cfg.Access.BindingCacheTTL)
	clinicSvc := clinicService.NewService(clinicRepo, profileRepo, v, clinicService.WithClock(o.now))
	followUpSvc := followupService.NewService(followUpRepo, gate, v, m,
		followupService.WithClock(o.now),
		followupService.WithLocation(cfg.Location()),
	)
	publicSvc := publicService.NewService(followUpSvc, viewLogRepo, m, publicService.WithClock(o.now))

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(
		auth.NewVerifier(auth.Config{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer}),
		cfg.Auth.LoginURL,
	)

	// Setup router
	r, err := router.NewRouter(
		authMiddleware,
		followupHandler.NewHandler(followUpSvc),
		publicHandler.NewHandler(publicSvc),
		health.NewHandler(db),
		m,
		reg,
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.Public.RateLimitRPS),
			RateBurst:      cfg.Public.RateLimitBurst,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			TrustedProxies: cfg.Server.TrustedProxies,
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsPath:    cfg.Metrics.Path,
		},
	)
	if err != nil {
		return nil, err
	}
	r.Setup()

	return &App{
		Engine:    r.Engine(),
		Clinics:   clinicSvc,
		FollowUps: followUpSvc,
		Public:    publicSvc,
		Metrics:   m,
	}, nil
}
