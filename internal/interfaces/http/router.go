// Package http wires the gin engine: middleware order, route groups
// and server lifecycle.
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finhealth/finhealth/internal/application/dto"
	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/internal/domain/repository"
	"github.com/finhealth/finhealth/internal/infrastructure/crypto"
	"github.com/finhealth/finhealth/internal/infrastructure/monitoring"
	"github.com/finhealth/finhealth/internal/infrastructure/ratelimit"
	"github.com/finhealth/finhealth/internal/interfaces/http/handlers"
	"github.com/finhealth/finhealth/internal/interfaces/http/middleware"
	"github.com/finhealth/finhealth/pkg/logger"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Company   *handlers.CompanyHandler
	Data      *handlers.DataHandler
	Analytics *handlers.AnalyticsHandler
	Reports   *handlers.ReportHandler
	Settings  *handlers.SettingsHandler
	Health    *handlers.HealthHandler
}

// Router owns the gin engine and the HTTP server lifecycle.
type Router struct {
	engine *gin.Engine
	server *http.Server
	config *config.Config
	logger logger.Logger
}

// NewRouter assembles the engine: recovery, observability, CORS and
// rate limiting globally; auth on /api; tenant resolution on
// company-scoped groups.
func NewRouter(
	cfg *config.Config,
	h *Handlers,
	tokens *crypto.TokenManager,
	companies repository.CompanyRepository,
	limiter *ratelimit.RedisRateLimiter,
	tracing *monitoring.TracingManager,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *Router {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.Observability(tracing, metrics, log))
	engine.Use(middleware.CORS(&cfg.CORS))
	engine.Use(middleware.RateLimit(limiter, &cfg.RateLimit, metrics))

	engine.GET("/health", h.Health.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.EnablePprof && cfg.Server.Mode != gin.ReleaseMode {
		pprof.Register(engine)
	}

	api := engine.Group("/api")
	api.Use(middleware.Auth(tokens, log))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.GET("/me", h.Auth.Me)
		}

		company := api.Group("/company")
		{
			company.POST("", h.Company.Create)
			company.GET("", h.Company.List)
			company.GET("/:id", h.Company.Get)
			company.PUT("/:id", h.Company.Update)
			company.POST("/switch", h.Company.Switch)
		}

		scoped := api.Group("")
		scoped.Use(middleware.Tenant(companies, middleware.NewMembershipCache(), log))
		{
			data := scoped.Group("/data")
			{
				data.POST("/upload", h.Data.Upload)
				data.GET("", h.Data.List)
				data.DELETE("", h.Data.Delete)
			}

			scoped.GET("/financial-health", h.Analytics.Health)
			scoped.GET("/credit-evaluation", h.Analytics.Credit)
			scoped.GET("/risk-analysis", h.Analytics.Risk)
			scoped.GET("/benchmark", h.Analytics.Benchmark)
			scoped.GET("/forecast", h.Analytics.Forecast)
			scoped.GET("/metrics", h.Analytics.Metrics)
			scoped.GET("/dashboard/summary", h.Analytics.Dashboard)

			reports := scoped.Group("/reports")
			{
				reports.GET("", h.Reports.List)
				reports.GET("/:id", h.Reports.Get)
			}

			settings := scoped.Group("/settings")
			{
				settings.GET("/profile", h.Settings.GetProfile)
				settings.PUT("/profile", h.Settings.UpdateProfile)
				settings.GET("/integrations", h.Settings.ListIntegrations)
				settings.POST("/integrations", h.Settings.CreateIntegration)
				settings.DELETE("/integrations/:id", h.Settings.DeleteIntegration)
				settings.GET("/preferences", h.Settings.GetPreferences)
				settings.PUT("/preferences", h.Settings.UpdatePreferences)
				settings.GET("/audit-logs", h.Settings.AuditLogs)
				settings.POST("/users/invite", h.Company.Invite)
			}
		}
	}

	engine.NoRoute(dto.SendNotFoundRoute)

	return &Router{engine: engine, config: cfg, logger: log.WithComponent("Router")}
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Start serves HTTP until the listener fails or Shutdown is called.
func (r *Router) Start() error {
	addr := fmt.Sprintf(":%d", r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    r.config.Server.ReadTimeout,
		WriteTimeout:   r.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("addr", addr))
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (r *Router) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}
