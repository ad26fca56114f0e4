package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sadonamonday/crtvsite/internal/api/router"
	"github.com/sadonamonday/crtvsite/internal/app/bootstrap"
	"github.com/sadonamonday/crtvsite/internal/booking"
	appconfig "github.com/sadonamonday/crtvsite/internal/config"
	"github.com/sadonamonday/crtvsite/internal/http/handlers"
	httpmiddleware "github.com/sadonamonday/crtvsite/internal/http/middleware"
	"github.com/sadonamonday/crtvsite/internal/observability/metrics"
	"github.com/sadonamonday/crtvsite/internal/sessions"
	"github.com/sadonamonday/crtvsite/internal/studioapi"
	"github.com/sadonamonday/crtvsite/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting crtv booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"studio_api", cfg.StudioAPIBaseURL,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := buildApp(cfg, redisClient, reg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	go app.sessions.Run(ctx, 0)
	go app.limiter.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.StudioAPITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

type app struct {
	handler  http.Handler
	sessions *sessions.Store
	limiter  *httpmiddleware.RateLimiter
}

// buildApp wires the studio API client, catalog, booking sessions and HTTP
// surface. redisClient may be nil.
func buildApp(cfg *appconfig.Config, redisClient *redis.Client, reg *prometheus.Registry, logger *logging.Logger) (*app, error) {
	bookingMetrics := metrics.NewBookingMetrics(reg)

	studio := studioapi.NewClient(cfg.StudioAPIBaseURL, logger, studioapi.WithTimeout(cfg.StudioAPITimeout))

	loader, err := bootstrap.BuildCatalogLoader(cfg, studio, redisClient, bookingMetrics, logger)
	if err != nil {
		return nil, err
	}

	submitter := booking.NewHTTPSubmitter(studio, booking.HTTPSubmitterConfig{
		CurrencySymbol: cfg.CurrencySymbol,
		Observer:       bookingMetrics,
	}, logger)
	store := bootstrap.BuildSessionStore(cfg, loader, submitter, bookingMetrics, logger)
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := router.New(&router.Config{
		Logger:              logger,
		CatalogHandler:      handlers.NewCatalogHandler(loader, logger),
		AvailabilityHandler: handlers.NewAvailabilityHandler(nil),
		BookingHandler:      handlers.NewBookingHandler(store, logger),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimiter:         limiter,
	})

	return &app{handler: handler, sessions: store, limiter: limiter}, nil
}
