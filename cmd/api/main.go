package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/vigilante/cmd/mainconfig"
	"github.com/wolfman30/vigilante/internal/api/router"
	"github.com/wolfman30/vigilante/internal/app/bootstrap"
	"github.com/wolfman30/vigilante/internal/brain"
	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/internal/console"
	"github.com/wolfman30/vigilante/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/vigilante/internal/http/middleware"
	"github.com/wolfman30/vigilante/internal/observability/metrics"
	"github.com/wolfman30/vigilante/pkg/logging"
)

const consoleBuffer = 64

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting vigilante honeypot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)
	if len(cfg.APIKeys) == 0 {
		logger.Warn("API_KEYS is empty; every keyed endpoint will answer 401")
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	personas, err := bootstrap.BuildPersonas(cfg)
	if err != nil {
		logger.Error("failed to load personas", "error", err)
		os.Exit(1)
	}
	generator, err := bootstrap.BuildGenerator(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build persona generator", "error", err)
		os.Exit(1)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	sessions := bootstrap.BuildSessionRepository(cfg, redisClient, logger)

	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}

	metricsHandler, honeypotMetrics := setupMetrics()

	sinks := bootstrap.BuildSinks(bootstrap.SinkDeps{
		Config:   cfg,
		AWS:      awsCfg,
		Pool:     pool,
		Sessions: sessions,
		Logger:   logger,
	})
	pipeline := bootstrap.BuildCallbackPipeline(cfg, awsCfg, sinks.All, honeypotMetrics, logger)
	pipeline.Start()

	hub := console.NewHub(consoleBuffer, logger)
	engine := bootstrap.BuildEngine(bootstrap.EngineDeps{
		Config:    cfg,
		Sessions:  sessions,
		Personas:  personas,
		Generator: generator,
		Publisher: pipeline.Publisher,
		Hub:       hub,
		Metrics:   honeypotMetrics,
		Locker:    bootstrap.BuildSessionLocker(cfg, redisClient),
		Logger:    logger,
	})

	var reportReader handlers.ReportReader
	if sinks.Reports != nil {
		reportReader = sinks.Reports
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	// Setup router
	routerCfg := &router.Config{
		Logger:      logger,
		Environment: cfg.Env,
		APIKeys:     cfg.APIKeys,
		Honeypot:    handlers.NewHoneypotHandler(engine, logger),
		Token: handlers.NewTokenHandler(handlers.VoiceConfig{
			APIKey:    cfg.LiveKitAPIKey,
			APISecret: cfg.LiveKitAPISecret,
			URL:       cfg.LiveKitURL,
			Room:      cfg.LiveKitRoom,
		}, personas, logger),
		Reports:            handlers.NewReportsHandler(reportReader, logger),
		Personas:           personas,
		Console:            hub.HandleWebSocket,
		RateLimiter:        limiter,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server. WriteTimeout leaves room for a slow generator call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	pipeline.Shutdown(shutdownCtx)

	logger.Info("server stopped")
}

// setupMetrics builds a private registry so /metrics only exposes what this
// service owns plus the runtime collectors.
func setupMetrics() (http.Handler, *metrics.HoneypotMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	brain.RegisterMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewHoneypotMetrics(reg)
}
