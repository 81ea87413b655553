package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithBucketPolicy(t *testing.T) {
	inner, _ := newTestLocalStorage(t)
	p := WithBucketPolicy(inner, 10, []string{"image/png", "IMAGE/JPEG"})
	ctx := context.Background()

	tests := []struct {
		name        string
		key         string
		size        int64
		contentType string
		wantErr     error
	}{
		{"png within limit", "d/1.png", 4, "image/png", nil},
		{"jpeg with parameters", "d/2.jpg", 4, "image/jpeg; charset=binary", nil},
		{"gif not on allow-list", "d/3.gif", 4, "image/gif", ErrMimeNotAllowed},
		{"non-image", "d/4.txt", 4, "text/plain", ErrMimeNotAllowed},
		{"over size limit", "d/5.png", 11, "image/png", ErrObjectTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.PutObject(ctx, tt.key, strings.NewReader("data"), tt.size, tt.contentType)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)

			exists, err := inner.Exists(ctx, tt.key)
			require.NoError(t, err)
			assert.False(t, exists, "rejected object must not reach the backend")
		})
	}
}

func TestWithBucketPolicy_NoLimits(t *testing.T) {
	inner, _ := newTestLocalStorage(t)
	p := WithBucketPolicy(inner, 0, nil)

	err := p.PutObject(context.Background(), "d/1.bin", strings.NewReader("data"), 1<<30, "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())
	assert.Equal(t, inner.PublicURL("d/1.bin"), p.PublicURL("d/1.bin"))
}
