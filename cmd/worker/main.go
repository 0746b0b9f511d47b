// Package main provides the entrypoint for the SkyDial worker. It keeps
// forecasts warm and publishes sun state over MQTT, triggered by Pub/Sub
// when configured and by a local schedule otherwise.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/config"
	"github.com/skydial/skydial/internal/mqtt"
	"github.com/skydial/skydial/internal/provider/resilience"
	"github.com/skydial/skydial/internal/telemetry"
	"github.com/skydial/skydial/internal/weather"
	"github.com/skydial/skydial/internal/weather/tomorrowio"
	"github.com/skydial/skydial/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "skydial-worker"

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting SkyDial worker")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	providerMetrics, err := resilience.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}
	registry := resilience.NewRegistry()

	clientCfg := resilience.DefaultClientConfig(tomorrowio.ProviderName)
	clientCfg.Timeout = cfg.Tomorrow.Timeout
	clientCfg.Registry = registry
	clientCfg.Metrics = providerMetrics
	clientCfg.Logger = log

	forecasts := weather.NewService(weather.ServiceConfig{
		Provider: tomorrowio.NewClient(tomorrowio.ClientConfig{
			APIKey:     cfg.Tomorrow.APIKey,
			BaseURL:    cfg.Tomorrow.BaseURL,
			HTTPClient: resilience.NewClient(clientCfg),
			Logger:     log,
		}),
		Logger:  log,
		Metrics: providerMetrics,
	})

	publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
		Broker:         cfg.MQTT.Broker,
		ClientID:       cfg.MQTT.ClientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		TopicPrefix:    cfg.MQTT.TopicPrefix,
		Enabled:        cfg.MQTT.Enabled,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize MQTT publisher")
	}
	defer publisher.Close()

	refreshCfg := worker.DefaultRefreshConfig()
	refreshCfg.Concurrency = cfg.Worker.Concurrency
	refreshCfg.WarmOnly = !publisher.Enabled()

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    refreshCfg,
		Logger:    log,
		Forecasts: forecasts,
		Publisher: publisher,
	})

	// Health endpoint for the container platform.
	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           healthHandler(job, registry, publisher),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	if cfg.PubSub.ProjectID != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSub.ProjectID,
			SubscriptionName: cfg.PubSub.Subscription,
			Dispatcher:       worker.NewDispatcher(job, log),
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if err := handler.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub client")
			}
		}()

		if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("pubsub receive stopped")
		}
	} else {
		log.Info().Msg("PUBSUB_PROJECT_ID not set - refreshing on a local schedule")
		handle := job.Schedule(ctx, cfg.Worker.RefreshInterval)
		<-ctx.Done()
		handle.Stop()
	}

	log.Info().Msg("shutting down worker")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func healthHandler(job *worker.RefreshJob, registry *resilience.Registry, publisher *mqtt.Publisher) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		status := "healthy"
		if !registry.Healthy() {
			status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":         status,
			"version":        Version,
			"mqtt_connected": publisher.IsConnected(),
			"refresh":        job.MetricsSnapshot(),
		})
	})
	return mux
}
