package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/anoixa/shelf-scanner/utils"
	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 配置结构
type WebDAVConfig struct {
	URL           string
	Username      string
	Password      string
	RootPath      string
	BucketName    string
	PublicBaseURL string
	Timeout       time.Duration
}

// WebDAVStorage WebDAV 存储实现
// 目录结构: {rootPath}/{bucket}/{key}
type WebDAVStorage struct {
	client        *gowebdav.Client
	baseURL       string
	rootPath      string
	bucket        string
	publicBaseURL string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &WebDAVStorage{
		client:        client,
		baseURL:       strings.TrimRight(cfg.URL, "/"),
		rootPath:      rootPath,
		bucket:        cfg.BucketName,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// bucketPath 存储桶目录
func (s *WebDAVStorage) bucketPath() string {
	return s.rootPath + "/" + s.bucket
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(key string) string {
	return s.bucketPath() + "/" + strings.TrimLeft(key, "/")
}

// run 在独立 goroutine 中执行阻塞调用，以便响应 ctx 取消
// gowebdav 的 API 不接收 context
func run(ctx context.Context, fn func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// PutObject 写入对象，写入前 Stat 检查以禁止覆盖
func (s *WebDAVStorage) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if !IsValidStoragePath(key) {
		return fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}

	exists, err := s.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", key, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrObjectExists, key)
	}

	fullPath := s.fullPath(key)

	// 递归创建父目录
	err = run(ctx, func() error {
		return s.client.MkdirAll(path.Dir(fullPath), 0755)
	})
	if err != nil {
		return fmt.Errorf("failed to ensure parent directory for %s: %w", key, err)
	}

	err = run(ctx, func() error {
		return s.client.WriteStream(fullPath, r, 0644)
	})
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", key, err)
	}
	return nil
}

// GetObject 从 WebDAV 读取对象
func (s *WebDAVStorage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	if !IsValidStoragePath(key) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}

	var rc io.ReadCloser
	err := run(ctx, func() error {
		var err error
		rc, err = s.client.ReadStream(s.fullPath(key))
		return err
	})
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", key, err)
	}
	return rc, nil
}

// DeleteObject 从 WebDAV 删除对象
func (s *WebDAVStorage) DeleteObject(ctx context.Context, key string) error {
	if !IsValidStoragePath(key) {
		return fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}

	err := run(ctx, func() error {
		return s.client.Remove(s.fullPath(key))
	})
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, key string) (bool, error) {
	exists := false
	err := run(ctx, func() error {
		_, err := s.client.Stat(s.fullPath(key))
		if err == nil {
			exists = true
			return nil
		}
		if gowebdav.IsErrNotFound(err) {
			return nil
		}
		return err
	})
	return exists, err
}

// ListObjects 递归列出前缀下的对象
func (s *WebDAVStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		var entries []os.FileInfo
		err := run(ctx, func() error {
			var err error
			entries, err = s.client.ReadDir(dir)
			return err
		})
		if err != nil {
			return err
		}

		for _, entry := range entries {
			key := entry.Name()
			if rel != "" {
				key = rel + "/" + entry.Name()
			}
			if entry.IsDir() {
				if err := walk(dir+"/"+entry.Name(), key); err != nil {
					return err
				}
				continue
			}
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			objects = append(objects, ObjectInfo{
				Key:          key,
				Size:         entry.Size(),
				LastModified: entry.ModTime(),
			})
		}
		return nil
	}

	if err := walk(s.bucketPath(), ""); err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list webdav objects: %w", err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// PublicURL WebDAV 通常需要认证，对外地址指向服务端的对象代理路由
func (s *WebDAVStorage) PublicURL(key string) string {
	return utils.BuildObjectURL(s.publicBaseURL, s.bucket, key)
}

// EnsureBucket 创建存储桶目录
func (s *WebDAVStorage) EnsureBucket(ctx context.Context, opts BucketOptions) (bool, error) {
	exists := false
	err := run(ctx, func() error {
		info, err := s.client.Stat(s.bucketPath())
		if err == nil {
			exists = info.IsDir()
			return nil
		}
		if gowebdav.IsErrNotFound(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to check bucket '%s': %w", s.bucket, err)
	}
	if exists {
		return false, nil
	}

	err = run(ctx, func() error {
		return s.client.MkdirAll(s.bucketPath(), 0755)
	})
	if err != nil {
		return false, fmt.Errorf("failed to create bucket '%s': %w", s.bucket, err)
	}
	return true, nil
}

// ListBuckets 根目录下的每个子目录视为一个存储桶
func (s *WebDAVStorage) ListBuckets(ctx context.Context) ([]string, error) {
	root := s.rootPath
	if root == "" {
		root = "/"
	}

	var entries []os.FileInfo
	err := run(ctx, func() error {
		var err error
		entries, err = s.client.ReadDir(root)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list webdav buckets: %w", err)
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
func (s *WebDAVStorage) Health(ctx context.Context) error {
	root := s.rootPath
	if root == "" {
		root = "/"
	}
	return run(ctx, func() error {
		_, err := s.client.ReadDir(root)
		return err
	})
}

// Bucket 返回存储桶名称
func (s *WebDAVStorage) Bucket() string {
	return s.bucket
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}
