package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/pkg/constants"
	"github.com/finhealth/finhealth/pkg/logger"
)

func setupCache(t *testing.T) (SummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	conn, err := NewConnection(context.Background(), &config.RedisConfig{Addr: mr.Addr()}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSummaryCache(conn, logger.NewNop()), mr
}

func TestSummaryCacheMissThenHit(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()
	companyID := "11111111-1111-1111-1111-111111111111"

	_, hit, err := cache.Get(ctx, constants.CacheKeyHealth, companyID)
	require.NoError(t, err)
	assert.False(t, hit)

	payload := []byte(`{"health_score":82.5}`)
	require.NoError(t, cache.Set(ctx, constants.CacheKeyHealth, companyID, payload))

	got, hit, err := cache.Get(ctx, constants.CacheKeyHealth, companyID)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, payload, got)
}

func TestSummaryCacheEntriesExpire(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()
	companyID := "22222222-2222-2222-2222-222222222222"

	require.NoError(t, cache.SetTTL(ctx, constants.CacheKeyCredit, companyID, []byte(`{}`), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, hit, err := cache.Get(ctx, constants.CacheKeyCredit, companyID)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInvalidateCompanyClearsAllPrefixes(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()
	companyID := "33333333-3333-3333-3333-333333333333"
	other := "44444444-4444-4444-4444-444444444444"

	for _, prefix := range summaryCachePrefixes {
		require.NoError(t, cache.Set(ctx, prefix, companyID, []byte(`{}`)))
	}
	require.NoError(t, cache.Set(ctx, constants.CacheKeyHealth, other, []byte(`{}`)))

	require.NoError(t, cache.InvalidateCompany(ctx, companyID))

	for _, prefix := range summaryCachePrefixes {
		_, hit, err := cache.Get(ctx, prefix, companyID)
		require.NoError(t, err)
		assert.False(t, hit, prefix)
	}

	// Other tenants keep their entries.
	_, hit, err := cache.Get(ctx, constants.CacheKeyHealth, other)
	require.NoError(t, err)
	assert.True(t, hit)
}
