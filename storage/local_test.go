package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPublicBase = "http://localhost:3000/objects"

func newTestLocalStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	tempDir := t.TempDir()
	s, err := NewLocalStorage(tempDir, "uploads", testPublicBase)
	require.NoError(t, err)
	return s, tempDir
}

// TestLocalStorage_PathTraversal_Prevention 测试路径遍历防护
func TestLocalStorage_PathTraversal_Prevention(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()

	traversalAttempts := []string{
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32\\config\\sam",
		"../../.env",
		"../config.yaml",
		"..",
		".",
		"",
		"/etc/passwd",
		"folder/../../../etc/passwd",
		"test/../../test.txt",
	}

	for _, attempt := range traversalAttempts {
		t.Run("put_"+attempt, func(t *testing.T) {
			err := s.PutObject(ctx, attempt, strings.NewReader("test content"), 12, "image/png")
			assert.ErrorIs(t, err, ErrInvalidKey, "Path traversal attempt should be rejected: %s", attempt)
		})
	}
}

// TestLocalStorage_PathTraversal_GetDelete 测试读取与删除时的路径遍历防护
func TestLocalStorage_PathTraversal_GetDelete(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()

	_, err := s.GetObject(ctx, "../../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = s.DeleteObject(ctx, "../../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalStorage_PutGetDelete(t *testing.T) {
	s, dir := newTestLocalStorage(t)
	ctx := context.Background()

	content := []byte("\x89PNG\r\n\x1a\nfake")
	key := "device-1/1700000000000.png"

	require.NoError(t, s.PutObject(ctx, key, bytes.NewReader(content), int64(len(content)), "image/png"))

	// 磁盘布局: {base}/{bucket}/{key}
	_, err := os.Stat(filepath.Join(dir, "uploads", "device-1", "1700000000000.png"))
	require.NoError(t, err)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.GetObject(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	_ = rc.Close()
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, s.DeleteObject(ctx, key))

	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.GetObject(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	err = s.DeleteObject(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_PutObject_NoOverwrite(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()
	key := "device-1/1700000000000.jpg"

	require.NoError(t, s.PutObject(ctx, key, strings.NewReader("first"), 5, "image/jpeg"))

	err := s.PutObject(ctx, key, strings.NewReader("second"), 6, "image/jpeg")
	assert.ErrorIs(t, err, ErrObjectExists)

	rc, err := s.GetObject(ctx, key)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "first", string(got), "existing object must not be replaced")
}

func TestLocalStorage_PutObject_CanceledContext(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	key := "device-1/1.png"
	err := s.PutObject(ctx, key, strings.NewReader("data"), 4, "image/png")
	assert.ErrorIs(t, err, context.Canceled)

	// 失败的写入不应留下文件
	exists, err := s.Exists(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_ListObjects(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()

	objects, err := s.ListObjects(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, objects)

	for _, key := range []string{"b/2.png", "a/1.png", "a/3.jpg"} {
		require.NoError(t, s.PutObject(ctx, key, strings.NewReader("x"), 1, "image/png"))
	}

	objects, err = s.ListObjects(ctx, "")
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Equal(t, "a/1.png", objects[0].Key)
	assert.Equal(t, "a/3.jpg", objects[1].Key)
	assert.Equal(t, "b/2.png", objects[2].Key)
	assert.Equal(t, int64(1), objects[0].Size)

	objects, err = s.ListObjects(ctx, "a/")
	require.NoError(t, err)
	assert.Len(t, objects, 2)
}

func TestLocalStorage_EnsureBucket_Idempotent(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	ctx := context.Background()

	created, err := s.EnsureBucket(ctx, BucketOptions{Public: true})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureBucket(ctx, BucketOptions{Public: true})
	require.NoError(t, err)
	assert.False(t, created, "second call must report the bucket as already present")

	buckets, err := s.ListBuckets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads"}, buckets)
}

func TestLocalStorage_PublicURL(t *testing.T) {
	s, _ := newTestLocalStorage(t)
	assert.Equal(t,
		"http://localhost:3000/objects/uploads/device-1/1700000000000.png",
		s.PublicURL("device-1/1700000000000.png"))
	assert.Equal(t, "uploads", s.Bucket())
	assert.Equal(t, "local", s.Name())
}

// TestIsValidStoragePath 测试路径验证函数
func TestIsValidStoragePath(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"device-1/1700000000000.png", true},
		{"file.txt", true},
		{"folder/file.txt", true},
		{"2024/01/01/image.png", true},
		{"", false},
		{"../etc/passwd", false},
		{"/etc/passwd", false},
		{"folder/../file.txt", false},
		{"file name.txt", false},
		{"file:name.txt", false},
		{"C:\\windows\\system32", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidStoragePath(tt.path))
		})
	}
}
