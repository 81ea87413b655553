package scan

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/anoixa/shelf-scanner/storage"
	"github.com/anoixa/shelf-scanner/utils/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putOrphan(t *testing.T, f *fixture, key string) {
	t.Helper()
	require.NoError(t, f.storage.PutObject(context.Background(), key, bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png"))
}

func TestOrphanCleaner_DeletesUnreferencedObjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kept, err := f.service.Submit(ctx, Upload{DeviceID: "device-1", Filename: "a.png", Data: pngHeader})
	require.NoError(t, err)

	orphanKey := "device-1/1792396700000.png"
	putOrphan(t, f, orphanKey)

	f.clock.Advance(2 * time.Hour)
	cleaner := NewOrphanCleaner(f.storage, f.scans, time.Hour, false).
		WithKeyGenerator(generator.NewObjectKeyGeneratorWithClock(f.clock.Now))

	stats, err := cleaner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, CleanStats{Scanned: 2, Orphans: 1, Deleted: 1, FreedBytes: int64(len(pngHeader))}, stats)

	exists, err := f.storage.Exists(ctx, orphanKey)
	require.NoError(t, err)
	assert.False(t, exists)

	latest, err := f.service.Latest(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, kept.Scan.ID, latest.ID)
	exists, err = f.storage.Exists(ctx, "device-1/1792396800000.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOrphanCleaner_SkipsRecentObjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	putOrphan(t, f, "device-1/1792396800000.png")
	f.clock.Advance(10 * time.Minute)

	cleaner := NewOrphanCleaner(f.storage, f.scans, time.Hour, false).
		WithKeyGenerator(generator.NewObjectKeyGeneratorWithClock(f.clock.Now))

	stats, err := cleaner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Deleted)
}

func TestOrphanCleaner_DryRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key := "device-1/1792396800000.png"
	putOrphan(t, f, key)
	f.clock.Advance(2 * time.Hour)

	cleaner := NewOrphanCleaner(f.storage, f.scans, time.Hour, true).
		WithKeyGenerator(generator.NewObjectKeyGeneratorWithClock(f.clock.Now))

	stats, err := cleaner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Orphans)
	assert.Zero(t, stats.Deleted)

	exists, err := f.storage.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOrphanCleaner_IgnoresPublicBaseChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.service.Submit(ctx, Upload{DeviceID: "device-1", Filename: "a.png", Data: pngHeader})
	require.NoError(t, err)

	// clean 以不同的端口启动，公开地址前缀与写入时不同
	other, err := storage.NewLocalStorage(f.root, "shelf-images", "http://localhost:8080/objects")
	require.NoError(t, err)
	require.NotEqual(t, res.ImageURL, other.PublicURL("device-1/1792396800000.png"))

	f.clock.Advance(2 * time.Hour)
	cleaner := NewOrphanCleaner(other, f.scans, time.Hour, false).
		WithKeyGenerator(generator.NewObjectKeyGeneratorWithClock(f.clock.Now))

	stats, err := cleaner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, CleanStats{Scanned: 1}, stats)

	exists, err := f.storage.Exists(ctx, "device-1/1792396800000.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOrphanCleaner_SkipsForeignKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	putOrphan(t, f, "device-1/readme.png")
	f.clock.Advance(2 * time.Hour)

	cleaner := NewOrphanCleaner(f.storage, f.scans, time.Hour, false).
		WithKeyGenerator(generator.NewObjectKeyGeneratorWithClock(f.clock.Now))

	stats, err := cleaner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, CleanStats{Scanned: 1, Skipped: 1}, stats)
}
