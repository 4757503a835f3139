package redis_a_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/resell-orders/internal/adapters/redis_adapter"
	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/ammerola/resell-orders/test/helpers"
)

func newCache(t *testing.T) (*redis_a.Cache, *helpers.TestRedis) {
	t.Helper()
	r := helpers.SetupTestRedis(t)
	return redis_a.NewCache(r.Client, 5*time.Minute, helpers.TestLogger()), r
}

func TestCache_SetAndGet_OrderView(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)

	order := helpers.CreateTestOrder()
	view := domain.BuildOrderView(order, nil, map[uuid.UUID]*domain.InventoryRecord{
		order.LineItems[0].ProductID: {ProductID: order.LineItems[0].ProductID, SalePrice: decimal.NewFromFloat(12.5)},
	})

	key := "order:" + order.ID.String()
	require.NoError(t, cache.SetWithTTL(ctx, key, view, time.Minute))

	var got domain.OrderView
	require.NoError(t, cache.Get(ctx, key, &got))
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, order.LineItems, got.LineItems)
	assert.True(t, view.Total.Equal(got.Total))
	assert.Equal(t, view.Items, got.Items)
}

func TestCache_Get_Miss(t *testing.T) {
	cache, _ := newCache(t)

	var dest string
	err := cache.Get(context.Background(), "order:missing", &dest)
	assert.True(t, errors.Is(err, ports.ErrCacheMiss))
}

func TestCache_Get_CorruptValue(t *testing.T) {
	cache, r := newCache(t)
	require.NoError(t, r.Server.Set("order:bad", "{not json"))

	var dest domain.OrderView
	err := cache.Get(context.Background(), "order:bad", &dest)
	require.Error(t, err)

	var cacheErr *redis_a.CacheError
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, "unmarshal", cacheErr.Op)
	assert.False(t, errors.Is(err, ports.ErrCacheMiss))
}

func TestCache_SetWithTTL(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "stock:p1", 7, time.Second))
	assert.True(t, r.Server.Exists("stock:p1"))

	r.Server.FastForward(2 * time.Second)

	var n int
	assert.True(t, errors.Is(cache.Get(ctx, "stock:p1", &n), ports.ErrCacheMiss))
}

func TestCache_SetWithTTL_DefaultLifetime(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "order:default", "v", 0))
	assert.Equal(t, 5*time.Minute, r.Server.TTL("order:default"))
}

func TestCache_Get_CorruptValueIsDropped(t *testing.T) {
	cache, r := newCache(t)
	require.NoError(t, r.Server.Set("order:stale", "[1,2"))

	var dest domain.OrderView
	require.Error(t, cache.Get(context.Background(), "order:stale", &dest))
	assert.False(t, r.Server.Exists("order:stale"))
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "order:a", "a", time.Minute))
	require.NoError(t, cache.SetWithTTL(ctx, "order:b", "b", time.Minute))

	require.NoError(t, cache.Delete(ctx, "order:a"))

	assert.False(t, r.Server.Exists("order:a"))
	assert.True(t, r.Server.Exists("order:b"))
	assert.NoError(t, cache.Delete(ctx))
}

func TestCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)

	// more keys than one SCAN page
	for i := 0; i < 450; i++ {
		require.NoError(t, cache.SetWithTTL(ctx, fmt.Sprintf("order:%d", i), i, time.Minute))
	}
	require.NoError(t, cache.SetWithTTL(ctx, "stock:1", 1, time.Minute))

	require.NoError(t, cache.DeletePattern(ctx, "order:*"))

	assert.Equal(t, []string{"stock:1"}, r.Server.Keys())

	// nothing left to match
	require.NoError(t, cache.DeletePattern(ctx, "order:*"))
	assert.Equal(t, []string{"stock:1"}, r.Server.Keys())
}

func TestCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	cache, r := newCache(t)
	r.Server.Close()

	var dest string
	err := cache.Get(ctx, "order:x", &dest)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrCacheMiss))

	var cacheErr *redis_a.CacheError
	require.True(t, errors.As(cache.DeletePattern(ctx, "order:*"), &cacheErr))
	assert.Equal(t, "scan", cacheErr.Op)
}
