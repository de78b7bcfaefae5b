package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionTTL = 24 * time.Hour

// RedisRepository stores each session as a JSON blob with a sliding TTL.
type RedisRepository struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisRepository(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisRepository {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("vigilante.internal.session")
	}
	return &RedisRepository{redis: client, ttl: ttl, tracer: tracer}
}

func (r *RedisRepository) Load(ctx context.Context, id string) (*Session, error) {
	ctx, span := r.tracer.Start(ctx, "session.load")
	defer span.End()

	data, err := r.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: load %s: %w", id, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	s.Intel = s.Intel.Clone()
	return &s, nil
}

func (r *RedisRepository) Save(ctx context.Context, s *Session) error {
	ctx, span := r.tracer.Start(ctx, "session.save")
	defer span.End()

	if s == nil || s.ID == "" {
		return errors.New("session: cannot save session without id")
	}
	data, err := json.Marshal(s)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: encode %s: %w", s.ID, err)
	}
	if err := r.redis.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: save %s: %w", s.ID, err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
