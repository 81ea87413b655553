package devices

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/shelf-scanner/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsert_CreatesDevice(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Upsert(ctx, "device-1", now))

	device, err := repo.GetByDeviceID(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, "device-1", device.DeviceID)
	assert.True(t, device.LastSeenAt.Equal(now))
}

func TestUpsert_RefreshesLastSeenWithoutDuplicating(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	first := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, repo.Upsert(ctx, "device-1", first))
	require.NoError(t, repo.Upsert(ctx, "device-1", second))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	device, err := repo.GetByDeviceID(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.True(t, device.LastSeenAt.Equal(second), "last_seen_at should advance")
	assert.True(t, device.CreatedAt.Equal(first), "created_at must not change on refresh")
}

func TestGetByDeviceID_NotFound(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))

	device, err := repo.GetByDeviceID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, device)
}
