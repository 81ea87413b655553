package cmd

import (
	"context"
	"testing"

	"github.com/anoixa/shelf-scanner/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupBucket_Idempotent(t *testing.T) {
	local, err := storage.NewLocalStorage(t.TempDir(), "uploads", "http://localhost:3000/objects")
	require.NoError(t, err)

	opts := storage.BucketOptions{Public: true, FileSizeLimit: 5 << 20, AllowedMimeTypes: []string{"image/png", "image/jpeg"}}
	ctx := context.Background()

	require.NoError(t, setupBucket(ctx, local, opts))
	require.NoError(t, setupBucket(ctx, local, opts))

	buckets, err := local.ListBuckets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads"}, buckets)
}

func TestRunMigrate_RejectsUnknownDirection(t *testing.T) {
	err := runMigrate(context.Background(), "sideways", "")
	assert.ErrorContains(t, err, "unknown migration direction")
}

func TestRunMigrate_RejectsTargetOnDown(t *testing.T) {
	err := runMigrate(context.Background(), "down", "20261019-0001")
	assert.ErrorContains(t, err, "--to only applies")
}
