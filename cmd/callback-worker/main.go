package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/vigilante/cmd/mainconfig"
	"github.com/wolfman30/vigilante/internal/app/bootstrap"
	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/internal/observability/metrics"
	"github.com/wolfman30/vigilante/internal/session"
	"github.com/wolfman30/vigilante/pkg/logging"
)

// callback-worker drains the SQS report queue and fans reports out to the
// configured sinks. The API publishes to the same queue when
// CALLBACK_QUEUE_URL is set.
func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if !cfg.UsesSQS() {
		logger.Error("CALLBACK_QUEUE_URL is required for the callback worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}

	// Transcripts for the archive sink come from the shared Redis store.
	var sessions session.Repository
	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		defer redisClient.Close()
		sessions = bootstrap.BuildSessionRepository(cfg, redisClient, logger)
	}

	sinks := bootstrap.BuildSinks(bootstrap.SinkDeps{
		Config:   cfg,
		AWS:      awsCfg,
		Pool:     pool,
		Sessions: sessions,
		Logger:   logger,
	})
	if len(sinks.All) == 0 {
		logger.Warn("no report sinks configured; reports will be consumed and dropped")
	}

	worker := bootstrap.BuildSQSWorker(cfg, awsCfg, sinks.All, metrics.NewHoneypotMetrics(prometheus.DefaultRegisterer), logger)
	logger.Info("callback worker started", "queue_url", cfg.CallbackQueueURL, "workers", cfg.CallbackWorkers, "sinks", len(sinks.All))
	worker.Start(ctx)

	<-ctx.Done()
	logger.Info("shutting down callback worker...")
	worker.Wait()
	logger.Info("callback worker stopped")
}
