package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrObjectExists 对象已存在（写入不允许覆盖）
	ErrObjectExists = errors.New("object already exists")
	// ErrObjectNotFound 对象不存在
	ErrObjectNotFound = errors.New("object not found")
	// ErrMimeNotAllowed MIME 类型不在存储桶允许列表中
	ErrMimeNotAllowed = errors.New("mime type is not allowed by bucket policy")
	// ErrObjectTooLarge 超过存储桶大小上限
	ErrObjectTooLarge = errors.New("object exceeds bucket size limit")
	// ErrInvalidKey 非法对象键
	ErrInvalidKey = errors.New("invalid object key")
)

// ObjectInfo 对象元信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// BucketOptions 存储桶创建参数
type BucketOptions struct {
	Public           bool
	FileSizeLimit    int64
	AllowedMimeTypes []string
}

// Provider 存储提供者接口 - 依赖倒置的核心抽象
// 每个提供者只服务一个存储桶，对象一经写入不可覆盖
type Provider interface {
	// PutObject 写入对象，key 已存在时返回 ErrObjectExists
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// GetObject 读取对象
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteObject 删除对象
	DeleteObject(ctx context.Context, key string) error

	// Exists 检查对象是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// ListObjects 列出前缀下的全部对象
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// PublicURL 对象公开地址，纯函数，不发起网络请求
	PublicURL(key string) string

	// EnsureBucket 创建存储桶，已存在视为成功（created=false）
	EnsureBucket(ctx context.Context, opts BucketOptions) (bool, error)

	// ListBuckets 列出可访问的存储桶
	ListBuckets(ctx context.Context) ([]string, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Bucket 返回存储桶名称
	Bucket() string

	// Name 返回存储名称
	Name() string
}
