package storage

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anoixa/shelf-scanner/utils"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioConfig MinIO / S3 兼容存储配置
type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	BucketName      string
	// PublicBaseURL 为空时使用 {scheme}://{endpoint}
	PublicBaseURL string
}

// MinioStorage MinIO 存储实现
type MinioStorage struct {
	client        *minio.Client
	bucketName    string
	region        string
	publicBaseURL string
}

// mustGetSystemCertPool 获取系统证书池
func mustGetSystemCertPool() *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		utils.Logger().Warn("Failed to load system cert pool", zap.Error(err))
		return x509.NewCertPool()
	}
	return pool
}

// NewMinioStorage 创建 MinIO 存储提供者
// 使用特权密钥访问，绕过存储桶的访问策略
func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 10 * time.Second,
		DisableCompression:    true,
	}

	// SSL
	if cfg.UseSSL {
		transport.TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		if f := os.Getenv("SSL_CERT_FILE"); f != "" {
			rootCAs := mustGetSystemCertPool()
			data, err := os.ReadFile(f)
			if err == nil {
				rootCAs.AppendCertsFromPEM(data)
			}
			transport.TLSClientConfig.RootCAs = rootCAs
		}
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	return &MinioStorage{
		client:        client,
		bucketName:    cfg.BucketName,
		region:        cfg.Region,
		publicBaseURL: publicBase,
	}, nil
}

// isNotFound 判断 minio 错误是否为对象不存在
func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// PutObject 上传对象，写入前 Stat 检查以禁止覆盖
// Stat 与 Put 之间存在竞态，同一毫秒同一设备的并发上传才会触发
func (s *MinioStorage) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if !IsValidStoragePath(key) {
		return fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}

	_, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{})
	if err == nil {
		return fmt.Errorf("%w: %s", ErrObjectExists, key)
	}
	if !isNotFound(err) {
		return fmt.Errorf("failed to stat object '%s' in minio: %w", key, err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, s.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return fmt.Errorf("failed to upload object '%s' to minio: %w", key, err)
	}

	return nil
}

// GetObject 读取对象
func (s *MinioStorage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	if _, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to stat object '%s' in minio: %w", key, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object stream from minio for '%s': %w", key, err)
	}
	return obj, nil
}

// DeleteObject 删除对象
func (s *MinioStorage) DeleteObject(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object '%s' from minio: %w", key, err)
	}
	return nil
}

// Exists 检查对象是否存在
func (s *MinioStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// ListObjects 递归列出前缀下的对象
func (s *MinioStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects in minio: %w", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}

// PublicURL 路径风格的公开地址 {base}/{bucket}/{key}
func (s *MinioStorage) PublicURL(key string) string {
	return utils.BuildObjectURL(s.publicBaseURL, s.bucketName, key)
}

// publicReadPolicy 匿名只读策略
func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"AWS": ["*"]},
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`, bucket)
}

// EnsureBucket 创建存储桶并设置公开读
func (s *MinioStorage) EnsureBucket(ctx context.Context, opts BucketOptions) (bool, error) {
	created := false

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return false, fmt.Errorf("failed to check if bucket '%s' exists: %w", s.bucketName, err)
	}
	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
		if err != nil {
			code := minio.ToErrorResponse(err).Code
			if code != "BucketAlreadyOwnedByYou" && code != "BucketAlreadyExists" {
				return false, fmt.Errorf("failed to create bucket '%s': %w", s.bucketName, err)
			}
		} else {
			created = true
		}
	}

	if opts.Public {
		if err := s.client.SetBucketPolicy(ctx, s.bucketName, publicReadPolicy(s.bucketName)); err != nil {
			return created, fmt.Errorf("failed to set public policy on bucket '%s': %w", s.bucketName, err)
		}
	}

	return created, nil
}

// ListBuckets 列出可访问的存储桶
func (s *MinioStorage) ListBuckets(ctx context.Context) ([]string, error) {
	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names, nil
}

// Health 检查存储健康状态
func (s *MinioStorage) Health(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket '%s' does not exist", s.bucketName)
	}
	return nil
}

// Bucket 返回存储桶名称
func (s *MinioStorage) Bucket() string {
	return s.bucketName
}

// Name 返回存储名称
func (s *MinioStorage) Name() string {
	return "minio"
}
