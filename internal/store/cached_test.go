package store

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ristretto.Cache {
	t.Helper()
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
	})
	require.NoError(t, err)
	t.Cleanup(cache.Close)
	return cache
}

func TestCachedStoreServesLatestFromCache(t *testing.T) {
	cached := NewCachedStore(NewMemoryStore(), newTestCache(t))

	ts := time.Now()
	stored, err := cached.Save(context.Background(), reading(ts, 700))
	require.NoError(t, err)
	assert.True(t, stored)

	// ristretto admits asynchronously.
	assert.Eventually(t, func() bool {
		_, ok := cached.cache.Get(latestKeyPrefix)
		return ok
	}, time.Second, 10*time.Millisecond)

	latest, err := cached.Latest(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, ts.UnixNano(), latest.Timestamp.UnixNano())
}

func TestCachedStoreDoesNotCacheStaleReadings(t *testing.T) {
	cached := NewCachedStore(NewMemoryStore(), newTestCache(t))
	now := time.Now()

	_, err := cached.Save(context.Background(), reading(now, 700))
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		_, ok := cached.cache.Get(latestKeyPrefix)
		return ok
	}, time.Second, 10*time.Millisecond)

	// A reading with an older timestamp arriving late must not displace the
	// cached latest.
	_, err = cached.Save(context.Background(), reading(now.Add(-time.Hour), 100))
	require.NoError(t, err)

	latest, err := cached.Latest(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 700, *latest.SoilMoisture)
}

func TestCachedStoreMissFallsThrough(t *testing.T) {
	mem := NewMemoryStore()
	ts := time.Now()
	_, err := mem.Save(context.Background(), reading(ts, 800))
	require.NoError(t, err)

	cached := NewCachedStore(mem, newTestCache(t))

	latest, err := cached.Latest(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 800, *latest.SoilMoisture)
}

func TestCachedStoreCleanupClearsCache(t *testing.T) {
	cached := NewCachedStore(NewMemoryStore(), newTestCache(t))
	old := time.Now().AddDate(0, 0, -60)

	_, err := cached.Save(context.Background(), reading(old, 700))
	require.NoError(t, err)

	removed, err := cached.DeleteOlderThan(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	latest, err := cached.Latest(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, latest)
}
