package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)

	return mr, client
}

func TestNewClient(t *testing.T) {
	t.Run("valid redis URL", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()

		client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.NotNil(t, client.KeyBuilder)
	})

	t.Run("invalid scheme", func(t *testing.T) {
		client, err := NewClient("invalid://url", "test", zap.NewNop())
		assert.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("empty URL", func(t *testing.T) {
		client, err := NewClient("", "test", zap.NewNop())
		assert.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("unreachable server", func(t *testing.T) {
		client, err := NewClient("redis://127.0.0.1:1", "test", zap.NewNop())
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestClient_GetSet(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "events:test", "value1", time.Minute))

	got, err := client.Get(ctx, "events:test")
	require.NoError(t, err)
	assert.Equal(t, "value1", got)

	_, err = client.Get(ctx, "events:missing")
	assert.Equal(t, goredis.Nil, err)
}

func TestClient_SetNX(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "lock:key", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "lock:key", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, mr.Set("b", "2"))

	require.NoError(t, client.Delete(ctx, "a", "b"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
}

func TestClient_Exists(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("present", "1"))

	n, err := client.Exists(ctx, "present", "absent")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_InvalidatePattern(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("staging:leads:analytics:all:-:-", "{}"))
	require.NoError(t, mr.Set("staging:leads:analytics:KAT-20260830-001:-:-", "{}"))
	require.NoError(t, mr.Set("staging:events:all", "[]"))

	require.NoError(t, client.InvalidatePattern(ctx, "staging:leads:analytics:*"))

	assert.False(t, mr.Exists("staging:leads:analytics:all:-:-"))
	assert.False(t, mr.Exists("staging:leads:analytics:KAT-20260830-001:-:-"))
	assert.True(t, mr.Exists("staging:events:all"))
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, client.Health(ctx))

	mr.Close()
	assert.Error(t, client.Health(ctx))
}
