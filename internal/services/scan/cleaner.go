package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/shelf-scanner/storage"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/anoixa/shelf-scanner/utils/generator"
	"go.uber.org/zap"
)

// DefaultOrphanGrace 新写入的对象在此时间内不参与回收，避开正在进行的上传
const DefaultOrphanGrace = time.Hour

// ImageURLSource 提供被扫描记录引用的图片地址
type ImageURLSource interface {
	ReferencedImageURLs(ctx context.Context) (map[string]struct{}, error)
}

// CleanStats 清理统计
type CleanStats struct {
	Scanned int
	Skipped int
	Orphans int
	Deleted int
	Failed  int

	// FreedBytes 已删除（dry-run 时为将删除）对象的总大小
	FreedBytes int64
}

// OrphanCleaner 回收没有扫描记录引用的对象
// 上传流程中 insert 失败会留下这类对象
type OrphanCleaner struct {
	storage   storage.Provider
	scans     ImageURLSource
	keys      *generator.ObjectKeyGenerator
	olderThan time.Duration
	dryRun    bool
}

// NewOrphanCleaner 创建孤儿对象清理器
func NewOrphanCleaner(provider storage.Provider, scans ImageURLSource, olderThan time.Duration, dryRun bool) *OrphanCleaner {
	if olderThan < 0 {
		olderThan = DefaultOrphanGrace
	}
	return &OrphanCleaner{
		storage:   provider,
		scans:     scans,
		keys:      generator.NewObjectKeyGenerator(),
		olderThan: olderThan,
		dryRun:    dryRun,
	}
}

// WithKeyGenerator 替换时钟，测试用
func (c *OrphanCleaner) WithKeyGenerator(g *generator.ObjectKeyGenerator) *OrphanCleaner {
	c.keys = g
	return c
}

// Run 执行一次清理
func (c *OrphanCleaner) Run(ctx context.Context) (CleanStats, error) {
	var stats CleanStats
	logger := utils.Logger()

	objects, err := c.storage.ListObjects(ctx, "")
	if err != nil {
		return stats, fmt.Errorf("failed to list objects: %w", err)
	}

	referenced, err := c.referencedKeys(ctx)
	if err != nil {
		return stats, err
	}

	cutoff := c.keys.Now().Add(-c.olderThan)

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Scanned++

		// 不是上传流程写入的键，不处理
		info, ok := c.keys.Parse(obj.Key)
		if !ok || info.UploadedAt.After(cutoff) {
			stats.Skipped++
			continue
		}

		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		stats.Orphans++

		if c.dryRun {
			stats.FreedBytes += obj.Size
			logger.Info("[DRY-RUN] Would delete orphaned object",
				zap.String("key", obj.Key),
				zap.Int64("size", obj.Size),
			)
			continue
		}

		if err := c.storage.DeleteObject(ctx, obj.Key); err != nil {
			stats.Failed++
			logger.Warn("Failed to delete orphaned object", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		stats.Deleted++
		stats.FreedBytes += obj.Size
		logger.Info("Deleted orphaned object", zap.String("key", obj.Key))
	}

	return stats, nil
}

// referencedKeys 把扫描记录中的地址还原为对象键
// 只比较键，serve 与 clean 的公开地址前缀（端口、域名）不同也不会误删
func (c *OrphanCleaner) referencedKeys(ctx context.Context) (map[string]struct{}, error) {
	urls, err := c.scans.ReferencedImageURLs(ctx)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(urls))
	for u := range urls {
		key, ok := c.keys.KeyFromURL(u)
		if !ok {
			utils.Logger().Warn("Scan image url does not end with an object key", zap.String("image_url", u))
			continue
		}
		keys[key] = struct{}{}
	}
	return keys, nil
}
