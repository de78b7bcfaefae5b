package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/internal/persona"
	"github.com/wolfman30/vigilante/internal/session"
	"github.com/wolfman30/vigilante/pkg/logging"
)

const sessionLockSlack = 15 * time.Second

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || !cfg.RedisEnabled() {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available; sessions stay in memory", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionRepository picks Redis when a client is available, memory otherwise.
func BuildSessionRepository(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) session.Repository {
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient != nil {
		var ttl time.Duration
		if cfg != nil {
			ttl = cfg.SessionTTL
		}
		logger.Info("session store", "backend", "redis", "ttl", ttl.String())
		return session.NewRedisRepository(redisClient, ttl, nil)
	}
	logger.Info("session store", "backend", "memory")
	return session.NewMemoryRepository()
}

// BuildSessionLocker returns a Redis lock that serializes turns across API
// replicas, or nil when sessions live in process memory. The lock outlives
// the slowest turn: one generator timeout plus slack.
func BuildSessionLocker(cfg *appconfig.Config, redisClient *redis.Client) *session.RedisLocker {
	if redisClient == nil {
		return nil
	}
	var ttl time.Duration
	if cfg != nil && cfg.LLMTimeout > 0 {
		ttl = cfg.LLMTimeout + sessionLockSlack
	}
	return session.NewRedisLocker(redisClient, ttl)
}

// ConnectPostgresPool opens the report database. An empty url or a failed
// connection returns nil; reports are then only delivered to the other sinks.
func ConnectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// BuildPersonas loads the builtin personas, merged with PERSONA_FILE when set.
func BuildPersonas(cfg *appconfig.Config) (*persona.Registry, error) {
	if cfg == nil {
		return persona.Builtin()
	}
	return persona.Load(cfg.PersonaFile, cfg.DefaultPersona)
}
