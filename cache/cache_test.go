package cache

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/shelf-scanner/cache/memory"
	"github.com/anoixa/shelf-scanner/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) Provider {
	t.Helper()
	m, err := memory.NewMemory(memory.Config{
		NumCounters: 1000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMemoryCache(t *testing.T) {
	c := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "test_key", "test_value", 10*time.Second))

	var got string
	require.NoError(t, c.Get(ctx, "test_key", &got))
	assert.Equal(t, "test_value", got)

	exists, err := c.Exists(ctx, "test_key")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "test_key"))

	err = c.Get(ctx, "test_key", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.True(t, IsCacheMiss(err))
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := newTestMemory(t)
	ctx := context.Background()

	scan := &models.Scan{ID: "s1", DeviceID: "d1", ImageURL: "http://cdn/a.png", Status: models.ScanStatusUploaded}
	require.NoError(t, c.Set(ctx, "scan", scan, time.Minute))

	scan.ImageURL = "mutated"

	var got models.Scan
	require.NoError(t, c.Get(ctx, "scan", &got))
	assert.Equal(t, "http://cdn/a.png", got.ImageURL)
}

func TestHelper_LatestScan(t *testing.T) {
	h := NewHelper(newTestMemory(t), time.Minute)
	ctx := context.Background()

	var got models.Scan
	err := h.GetCachedLatestScan(ctx, "d1", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, h.CacheNoScans(ctx, "d1"))
	empty, err := h.HasNoScans(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, empty)

	scan := &models.Scan{ID: "s1", DeviceID: "d1", ImageURL: "http://cdn/a.png", Status: models.ScanStatusUploaded}
	require.NoError(t, h.CacheLatestScan(ctx, scan))

	require.NoError(t, h.GetCachedLatestScan(ctx, "d1", &got))
	assert.Equal(t, "s1", got.ID)

	// 写入新记录后空值标记失效
	_, err = h.HasNoScans(ctx, "d1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, h.DeleteCachedLatestScan(ctx, "d1"))
	err = h.GetCachedLatestScan(ctx, "d1", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, h.CacheNoScans(ctx, "d1"))
	require.NoError(t, h.DeleteNoScansMarker(ctx, "d1"))
	_, err = h.HasNoScans(ctx, "d1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestHelper_CacheLatestScanIfNewer(t *testing.T) {
	h := NewHelper(newTestMemory(t), time.Minute)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	older := &models.Scan{ID: "old", DeviceID: "d1", CreatedAt: base}
	newer := &models.Scan{ID: "new", DeviceID: "d1", CreatedAt: base.Add(time.Second)}

	require.NoError(t, h.CacheLatestScanIfNewer(ctx, newer))
	require.NoError(t, h.CacheLatestScanIfNewer(ctx, older))

	var got models.Scan
	require.NoError(t, h.GetCachedLatestScan(ctx, "d1", &got))
	assert.Equal(t, "new", got.ID)

	newest := &models.Scan{ID: "newest", DeviceID: "d1", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, h.CacheLatestScanIfNewer(ctx, newest))
	require.NoError(t, h.GetCachedLatestScan(ctx, "d1", &got))
	assert.Equal(t, "newest", got.ID)
}

func TestHelper_NilProvider(t *testing.T) {
	h := NewHelper(nil, 0)
	var got models.Scan
	assert.ErrorIs(t, h.GetCachedLatestScan(context.Background(), "d1", &got), ErrCacheMiss)
	assert.Error(t, h.CacheLatestScan(context.Background(), &models.Scan{DeviceID: "d1"}))
	assert.NoError(t, h.DeleteCachedLatestScan(context.Background(), "d1"))
}

func TestKeyBuilder(t *testing.T) {
	assert.Equal(t, "latest_scan:device-1", LatestScan.Build("device-1"))
	assert.Equal(t, "empty:latest_scan:device-1", Empty.Build(LatestScan.Build("device-1")))
	assert.Equal(t, "latest_scan", LatestScan.Build())
}

func TestAddJitter(t *testing.T) {
	assert.Equal(t, time.Duration(0), addJitter(0))
	for i := 0; i < 100; i++ {
		d := addJitter(time.Minute)
		assert.GreaterOrEqual(t, d, time.Minute)
		assert.Less(t, d, time.Minute+6*time.Second)
	}
}
