package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/anoixa/shelf-scanner/utils"
	"github.com/anoixa/shelf-scanner/utils/pool"
)

// LocalStorage 本地文件存储实现
// 目录结构: {basePath}/{bucket}/{key}
type LocalStorage struct {
	absBasePath   string
	bucket        string
	publicBaseURL string
}

// NewLocalStorage 创建本地存储提供者
func NewLocalStorage(basePath, bucket, publicBaseURL string) (*LocalStorage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory '%s': %w", absPath, err)
	}

	testFile := filepath.Join(absPath, ".write_test_"+strconv.FormatInt(time.Now().UnixNano(), 10))
	f, err := os.Create(testFile)
	if err != nil {
		return nil, fmt.Errorf("local storage directory '%s' is not writable: %w", absPath, err)
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	return &LocalStorage{
		absBasePath:   absPath + string(os.PathSeparator),
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

// bucketPath 存储桶目录
func (s *LocalStorage) bucketPath() string {
	return filepath.Join(s.absBasePath, s.bucket)
}

// resolve 校验 key 并返回绝对路径
func (s *LocalStorage) resolve(key string) (string, error) {
	if !IsValidStoragePath(key) {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}

	fullPath := filepath.Join(s.bucketPath(), filepath.FromSlash(key))

	// 防止目录遍历攻击
	if !strings.HasPrefix(fullPath, s.bucketPath()+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: potential directory traversal: %s", ErrInvalidKey, key)
	}
	return fullPath, nil
}

// PutObject 写入对象，O_EXCL 保证不覆盖
func (s *LocalStorage) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	dstPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", key, err)
	}

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrObjectExists, key)
		}
		return fmt.Errorf("failed to create destination file '%s': %w", key, err)
	}
	defer func() { _ = dst.Close() }()

	bufPtr := pool.SharedBufferPool.Get().(*[]byte)
	defer pool.SharedBufferPool.Put(bufPtr)

	if _, err := io.CopyBuffer(dst, &ctxReader{ctx: ctx, r: r}, *bufPtr); err != nil {
		_ = dst.Close()
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to copy file content to '%s': %w", key, err)
	}

	return nil
}

// GetObject 读取对象
func (s *LocalStorage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file '%s': %w", key, err)
	}

	return file, nil
}

// DeleteObject 删除对象
func (s *LocalStorage) DeleteObject(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return fmt.Errorf("failed to delete local file '%s': %w", key, err)
	}
	return nil
}

// Exists 检查对象是否存在
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListObjects 列出对象，按 key 排序
func (s *LocalStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	root := s.bucketPath()
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var objects []ObjectInfo
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list local objects: %w", err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// PublicURL 公开地址
func (s *LocalStorage) PublicURL(key string) string {
	return utils.BuildObjectURL(s.publicBaseURL, s.bucket, key)
}

// EnsureBucket 创建存储桶目录
func (s *LocalStorage) EnsureBucket(ctx context.Context, opts BucketOptions) (bool, error) {
	if _, err := os.Stat(s.bucketPath()); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(s.bucketPath(), 0755); err != nil {
		return false, fmt.Errorf("failed to create bucket '%s': %w", s.bucket, err)
	}
	return true, nil
}

// ListBuckets 基础目录下的每个子目录视为一个存储桶
func (s *LocalStorage) ListBuckets(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.absBasePath)
	if err != nil {
		return nil, err
	}

	var buckets []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			buckets = append(buckets, entry.Name())
		}
	}
	return buckets, nil
}

// Health 检查存储健康状态
func (s *LocalStorage) Health(ctx context.Context) error {
	_, err := os.ReadDir(s.absBasePath)
	return err
}

// Bucket 返回存储桶名称
func (s *LocalStorage) Bucket() string {
	return s.bucket
}

// Name 返回存储名称
func (s *LocalStorage) Name() string {
	return "local"
}

// IsValidStoragePath 校验存储路径是否合法
func IsValidStoragePath(path string) bool {
	if path == "" {
		return false
	}

	// 不允许绝对路径
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}

	// 防止目录遍历
	if strings.Contains(path, "..") {
		return false
	}

	// 只允许安全字符
	for _, r := range path {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' && r != '/' {
			return false
		}
	}

	return true
}

// ctxReader 写入过程中响应取消
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
