package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/anoixa/shelf-scanner/cache/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	r, err := NewRedisFromConfig(&Config{Address: mr.Addr(), KeyPrefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedis_SetGetDelete(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	type payload struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}

	require.NoError(t, r.Set(ctx, "k", payload{ID: "1", URL: "http://cdn/a.png"}, time.Minute))
	assert.True(t, mr.Exists("test:k"), "keys are namespaced by prefix")

	var got payload
	require.NoError(t, r.Get(ctx, "k", &got))
	assert.Equal(t, "http://cdn/a.png", got.URL)

	exists, err := r.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, r.Delete(ctx, "k"))
	err = r.Get(ctx, "k", &got)
	assert.True(t, types.IsCacheMiss(err))
}

func TestRedis_Expiration(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "ttl", "v", time.Second))
	mr.FastForward(2 * time.Second)

	var got string
	assert.ErrorIs(t, r.Get(ctx, "ttl", &got), types.ErrCacheMiss)
}

func TestRedis_RawBytes(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "raw", []byte("bytes"), 0))

	var got []byte
	require.NoError(t, r.Get(ctx, "raw", &got))
	assert.Equal(t, []byte("bytes"), got)
}

func TestNewRedisFromConfig_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisFromConfig(&Config{Address: addr})
	assert.Error(t, err)
}

func TestRedis_Name(t *testing.T) {
	r, _ := newTestRedis(t)
	assert.Equal(t, "redis", r.Name())
}
