// Package main provides the entrypoint for the SkyDial API server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/api"
	"github.com/skydial/skydial/internal/api/middleware"
	"github.com/skydial/skydial/internal/config"
	"github.com/skydial/skydial/internal/database"
	"github.com/skydial/skydial/internal/geocode"
	"github.com/skydial/skydial/internal/geocode/geonames"
	"github.com/skydial/skydial/internal/preferences"
	"github.com/skydial/skydial/internal/provider/resilience"
	"github.com/skydial/skydial/internal/session"
	"github.com/skydial/skydial/internal/telemetry"
	"github.com/skydial/skydial/internal/weather"
	"github.com/skydial/skydial/internal/weather/tomorrowio"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "skydial-api"

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SkyDial API")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.App.Env,
		OTLPEndpoint:   cfg.Telemetry.Endpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.Endpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize HTTP metrics")
	}
	providerMetrics, err := resilience.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	// Upstream providers
	registry := resilience.NewRegistry()

	forecastCfg := resilience.DefaultClientConfig(tomorrowio.ProviderName)
	forecastCfg.Timeout = cfg.Tomorrow.Timeout
	forecastCfg.Registry = registry
	forecastCfg.Metrics = providerMetrics
	forecastCfg.Logger = log

	if cfg.Tomorrow.APIKey == "" {
		log.Warn().Msg("TOMORROW_API_KEY not set - forecast endpoints will return 500")
	}
	forecasts := weather.NewService(weather.ServiceConfig{
		Provider: tomorrowio.NewClient(tomorrowio.ClientConfig{
			APIKey:     cfg.Tomorrow.APIKey,
			BaseURL:    cfg.Tomorrow.BaseURL,
			HTTPClient: resilience.NewClient(forecastCfg),
			Logger:     log,
		}),
		Logger:  log,
		Metrics: providerMetrics,
	})

	citiesCfg := resilience.DefaultClientConfig(geonames.ProviderName)
	citiesCfg.Registry = registry
	citiesCfg.Metrics = providerMetrics
	citiesCfg.Logger = log

	if cfg.GeoNames.Username == "" {
		log.Warn().Msg("GEONAMES_USER_NAME not set - city search will return 500")
	}
	cities := geocode.NewService(geocode.ServiceConfig{
		Provider: geonames.NewClient(geonames.ClientConfig{
			Username:   cfg.GeoNames.Username,
			BaseURL:    cfg.GeoNames.BaseURL,
			HTTPClient: resilience.NewClient(citiesCfg),
			Logger:     log,
		}),
		Logger:  log,
		Metrics: providerMetrics,
	})

	// Sessions
	if cfg.Session.SigningKey == config.DefaultSigningKey {
		if cfg.IsProduction() {
			log.Fatal().Msg("SESSION_SIGNING_KEY must be set in production")
		}
		log.Warn().Msg("using default session signing key - not secure for production")
	}
	sessions, err := session.NewService(session.Config{
		SigningKey: cfg.Session.SigningKey,
		TTL:        cfg.Session.TTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize sessions")
	}

	// Preferences storage
	var (
		prefsRepo preferences.Repository = preferences.NewInMemoryRepository()
		pinger    database.Pinger
	)
	if cfg.Database.Enabled {
		dbConfig := cfg.DatabaseConnConfig()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		repo := preferences.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare preferences table")
		}
		prefsRepo, pinger = repo, pool

		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
	} else {
		log.Info().Msg("database disabled - preferences kept in memory")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           httpMetrics,
		RequireTLS:        cfg.App.RequireTLS,
		Registry:          registry,
		DB:                pinger,
		Forecasts:         forecasts,
		Cities:            cities,
		Sessions:          sessions,
		Preferences:       preferences.NewService(prefsRepo),
		StreamCheckOrigin: checkOrigin(cfg.App.AllowedOrigins),
	})

	// Create HTTP server. WriteTimeout does not apply to hijacked stream
	// connections.
	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

// checkOrigin allows the listed origins. With none listed it returns nil,
// which keeps the websocket library's same-origin check.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
