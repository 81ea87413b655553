package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/anoixa/shelf-scanner/utils"
)

// policyProvider 在写入前执行存储桶策略（大小上限 + MIME 白名单）
// minio/webdav/local 本身不支持这类桶级约束，统一在这一层实现
type policyProvider struct {
	Provider
	maxSize      int64
	allowedTypes map[string]struct{}
}

// WithBucketPolicy 为提供者附加存储桶策略
// maxSize <= 0 表示不限制大小，allowedTypes 为空表示不限制类型
func WithBucketPolicy(p Provider, maxSize int64, allowedTypes []string) Provider {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[utils.NormalizeMimeType(t)] = struct{}{}
	}
	return &policyProvider{
		Provider:     p,
		maxSize:      maxSize,
		allowedTypes: allowed,
	}
}

// PutObject 校验策略后写入
func (p *policyProvider) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if p.maxSize > 0 && size > p.maxSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrObjectTooLarge, size, p.maxSize)
	}
	if len(p.allowedTypes) > 0 {
		if _, ok := p.allowedTypes[utils.NormalizeMimeType(contentType)]; !ok {
			return fmt.Errorf("%w: %s", ErrMimeNotAllowed, contentType)
		}
	}
	return p.Provider.PutObject(ctx, key, r, size, contentType)
}
