package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/vigilante/internal/intel"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisRepository_SaveLoad(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRedisRepository(client, time.Hour, nil)
	ctx := context.Background()

	s := New("sess-1", "colonel", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	s.Append(Message{Sender: SenderScammer, Text: "send OTP", Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})
	s.Intel.Add(intel.PhoneNumbers, "9876543210")
	s.ScamReported = true
	require.NoError(t, repo.Save(ctx, s))

	assert.True(t, mr.Exists("session:sess-1"))
	assert.Equal(t, time.Hour, mr.TTL("session:sess-1"))

	loaded, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "colonel", loaded.PersonaID)
	assert.Equal(t, 1, loaded.MessageCount)
	assert.True(t, loaded.ScamReported)
	assert.Equal(t, []string{"9876543210"}, loaded.Intel[intel.PhoneNumbers])
	assert.Len(t, loaded.Intel, len(intel.Categories))
	assert.True(t, loaded.Messages[0].FromCounterpart())
}

func TestRedisRepository_Expiry(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRedisRepository(client, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, New("sess-2", "grandma", time.Now())))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Load(ctx, "sess-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRepository_CorruptPayload(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRedisRepository(client, 0, nil)
	require.NoError(t, mr.Set("session:bad", "{not json"))

	_, err := repo.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
