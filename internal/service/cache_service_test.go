package service

import (
	"context"
	"testing"
	"time"

	"katalyst-be/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *CacheService) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)

	return mr, NewCacheService(client, zap.NewNop())
}

func TestCacheService_RoundTrip(t *testing.T) {
	mr, cache := setupCache(t)
	ctx := context.Background()
	key := cache.Keys().KeyEventByID("KAT-20260830-001")

	type payload struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}

	var miss payload
	assert.False(t, cache.GetJSON(ctx, key, &miss))

	cache.SetJSONAsync(key, payload{Title: "Campus Workshop", Count: 3}, time.Minute)

	// SetJSONAsync writes in the background
	require.Eventually(t, func() bool {
		return mr.Exists(key)
	}, time.Second, 10*time.Millisecond)

	var hit payload
	require.True(t, cache.GetJSON(ctx, key, &hit))
	assert.Equal(t, "Campus Workshop", hit.Title)
	assert.Equal(t, 3, hit.Count)
}

func TestCacheService_CorruptedPayload(t *testing.T) {
	mr, cache := setupCache(t)
	ctx := context.Background()
	key := cache.Keys().KeyEventsAll()

	require.NoError(t, mr.Set(key, "{not json"))

	var dest []string
	assert.False(t, cache.GetJSON(ctx, key, &dest))
}

func TestCacheService_Invalidate(t *testing.T) {
	mr, cache := setupCache(t)
	ctx := context.Background()
	key := cache.Keys().KeyEventsAll()

	require.NoError(t, mr.Set(key, `["a"]`))
	cache.Invalidate(ctx, key)
	assert.False(t, mr.Exists(key))
}

func TestCacheService_InvalidateAnalytics(t *testing.T) {
	mr, cache := setupCache(t)
	ctx := context.Background()

	analyticsKey := cache.Keys().KeyLeadAnalytics("all:-:-")
	dashboardKey := cache.Keys().KeyDashboard()
	eventsKey := cache.Keys().KeyEventsAll()

	require.NoError(t, mr.Set(analyticsKey, "{}"))
	require.NoError(t, mr.Set(dashboardKey, "{}"))
	require.NoError(t, mr.Set(eventsKey, "[]"))

	cache.InvalidateAnalytics(ctx)

	assert.False(t, mr.Exists(analyticsKey))
	assert.False(t, mr.Exists(dashboardKey))
	assert.True(t, mr.Exists(eventsKey))
}

func TestCacheService_NilRedis(t *testing.T) {
	cache := NewCacheService(nil, zap.NewNop())
	ctx := context.Background()

	var dest string
	assert.False(t, cache.GetJSON(ctx, "any", &dest))
	assert.NotPanics(t, func() {
		cache.SetJSONAsync("any", "value", time.Minute)
		cache.Invalidate(ctx, "any")
		cache.InvalidateAnalytics(ctx)
	})
	assert.NotNil(t, cache.Keys())
}
