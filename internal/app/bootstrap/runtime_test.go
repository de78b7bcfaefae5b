package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/internal/session"
	"github.com/wolfman30/vigilante/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	cfg := &appconfig.Config{SessionStore: "memory", RedisAddr: "localhost:6379"}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), false); client != nil {
		t.Fatalf("expected nil client for memory store")
	}
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{SessionStore: "redis", RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	defer client.Close()

	repo := BuildSessionRepository(cfg, client, logging.New("error"))
	if _, ok := repo.(*session.RedisRepository); !ok {
		t.Fatalf("expected redis repository, got %T", repo)
	}
	if BuildSessionLocker(cfg, client) == nil {
		t.Fatalf("expected a distributed session lock with redis sessions")
	}
}

func TestBuildSessionLockerWithoutRedis(t *testing.T) {
	if locker := BuildSessionLocker(&appconfig.Config{}, nil); locker != nil {
		t.Fatalf("expected nil locker without redis, got %v", locker)
	}
}

func TestBuildRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &appconfig.Config{SessionStore: "redis", RedisAddr: addr}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildSessionRepositoryMemory(t *testing.T) {
	repo := BuildSessionRepository(&appconfig.Config{}, nil, logging.New("error"))
	if _, ok := repo.(*session.MemoryRepository); !ok {
		t.Fatalf("expected memory repository, got %T", repo)
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	if pool := ConnectPostgresPool(context.Background(), "", logging.New("error")); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestBuildPersonasUnknownDefault(t *testing.T) {
	if _, err := BuildPersonas(&appconfig.Config{DefaultPersona: "pirate"}); err == nil {
		t.Fatalf("expected error for unknown default persona")
	}
	reg, err := BuildPersonas(&appconfig.Config{DefaultPersona: "student"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Default().ID != "student" {
		t.Fatalf("expected student default, got %s", reg.Default().ID)
	}
}
