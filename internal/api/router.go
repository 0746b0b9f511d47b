// Package api provides the HTTP API for SkyDial.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/api/handler"
	"github.com/skydial/skydial/internal/api/middleware"
	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/database"
	"github.com/skydial/skydial/internal/provider/resilience"
	"github.com/skydial/skydial/internal/sun"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	Registry *resilience.Registry
	DB       database.Pinger

	Forecasts   handler.ForecastService
	Cities      handler.CitySearcher
	Sessions    handler.SessionIssuer
	Preferences handler.PreferencesService

	// Clock drives every sun computation. Nil uses the system clock.
	Clock sun.Clock

	// StreamInterval and StreamCheckOrigin configure /v1/sun/stream.
	StreamInterval    time.Duration
	StreamCheckOrigin func(r *http.Request) bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "skydial-api"
	}
	if cfg.Clock == nil {
		cfg.Clock = sun.RealClock{}
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	builder := dashboard.NewBuilder(cfg.Clock)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		DB:        cfg.DB,
	})
	weatherHandler := handler.NewWeatherHandler(cfg.Forecasts, cfg.Cities, builder, cfg.Logger)
	sunHandler := handler.NewSunHandler(handler.SunHandlerConfig{
		Forecasts:      cfg.Forecasts,
		Builder:        builder,
		Clock:          cfg.Clock,
		Logger:         cfg.Logger,
		StreamInterval: cfg.StreamInterval,
		CheckOrigin:    cfg.StreamCheckOrigin,
	})
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.Logger)
	preferencesHandler := handler.NewPreferencesHandler(cfg.Preferences, cfg.Logger)

	sessionRequired := middleware.Session(cfg.Sessions)

	sessionRateLimit := middleware.RateLimitByIP(middleware.SessionRateLimit)   // 10 req/min
	proxyRateLimit := middleware.RateLimitByIP(middleware.ProxyRateLimit)       // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(standardRateLimit).Get("/status", opsHandler.SystemStatus)
		})

		// Upstream proxies spend provider quota.
		r.With(proxyRateLimit, middleware.RequireJSON).Post("/weather", weatherHandler.GetWeather)
		r.With(proxyRateLimit).Get("/weather-city", weatherHandler.SearchCities)

		r.Route("/sun", func(r chi.Router) {
			r.With(proxyRateLimit).Get("/", sunHandler.GetSun)
			r.With(standardRateLimit).Get("/compute", sunHandler.Compute)
			r.With(proxyRateLimit).Get("/stream", sunHandler.Stream)
		})

		r.With(sessionRateLimit).Post("/sessions", sessionHandler.Create)

		r.Route("/me/preferences", func(r chi.Router) {
			r.Use(sessionRequired)
			r.Use(middleware.RateLimitBySession(middleware.StandardRateLimit))
			r.Use(middleware.RequireJSON)
			r.Get("/", preferencesHandler.Get)
			r.Put("/", preferencesHandler.Update)
			r.Delete("/", preferencesHandler.Reset)
			r.Post("/units:toggle", preferencesHandler.ToggleUnits)
			r.Post("/city", preferencesHandler.SelectCity)
			r.Get("/history", preferencesHandler.History)
		})
	})

	return r
}
