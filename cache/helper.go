package cache

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/anoixa/shelf-scanner/database/models"
)

const (
	// DefaultLatestScanExpiration 最近扫描缓存过期时间
	DefaultLatestScanExpiration = 10 * time.Minute

	// DefaultEmptyValueExpiration 空值缓存过期时间
	DefaultEmptyValueExpiration = 1 * time.Minute

	emptyMarker = "EMPTY"
)

// addJitter 添加随机抖动（+0~10%），防止缓存雪崩
func addJitter(duration time.Duration) time.Duration {
	if duration < 10 {
		return duration
	}
	return duration + time.Duration(rand.Int63n(int64(duration)/10))
}

// Helper 扫描记录相关的缓存操作
type Helper struct {
	provider      Provider
	latestScanTTL time.Duration
}

// NewHelper 创建新的缓存辅助工具，ttl <= 0 时使用默认值
func NewHelper(provider Provider, latestScanTTL time.Duration) *Helper {
	if latestScanTTL <= 0 {
		latestScanTTL = DefaultLatestScanExpiration
	}
	return &Helper{
		provider:      provider,
		latestScanTTL: latestScanTTL,
	}
}

// CacheLatestScan 缓存设备最近一次扫描，同时清除空值标记
func (h *Helper) CacheLatestScan(ctx context.Context, scan *models.Scan) error {
	if h.provider == nil {
		return fmt.Errorf("cache provider not initialized")
	}

	if err := h.provider.Set(ctx, LatestScan.Build(scan.DeviceID), scan, addJitter(h.latestScanTTL)); err != nil {
		return err
	}
	return h.provider.Delete(ctx, Empty.Build(LatestScan.Build(scan.DeviceID)))
}

// CacheLatestScanIfNewer 缓存中已有更新的扫描时不覆盖
// 回源读到的旧行不会盖掉并发上传刚写入的新行
func (h *Helper) CacheLatestScanIfNewer(ctx context.Context, scan *models.Scan) error {
	var cached models.Scan
	if err := h.GetCachedLatestScan(ctx, scan.DeviceID, &cached); err == nil && cached.CreatedAt.After(scan.CreatedAt) {
		return h.DeleteNoScansMarker(ctx, scan.DeviceID)
	}
	return h.CacheLatestScan(ctx, scan)
}

// GetCachedLatestScan 获取缓存的最近扫描
func (h *Helper) GetCachedLatestScan(ctx context.Context, deviceID string, scan *models.Scan) error {
	if h.provider == nil {
		return ErrCacheMiss
	}
	return h.provider.Get(ctx, LatestScan.Build(deviceID), scan)
}

// DeleteCachedLatestScan 删除缓存的最近扫描
func (h *Helper) DeleteCachedLatestScan(ctx context.Context, deviceID string) error {
	if h.provider == nil {
		return nil
	}
	return h.provider.Delete(ctx, LatestScan.Build(deviceID))
}

// CacheNoScans 标记设备暂无扫描记录，避免反复查库
func (h *Helper) CacheNoScans(ctx context.Context, deviceID string) error {
	if h.provider == nil {
		return fmt.Errorf("cache provider not initialized")
	}
	return h.provider.Set(ctx, Empty.Build(LatestScan.Build(deviceID)), emptyMarker, addJitter(DefaultEmptyValueExpiration))
}

// HasNoScans 是否存在空值标记
func (h *Helper) HasNoScans(ctx context.Context, deviceID string) (bool, error) {
	if h.provider == nil {
		return false, ErrCacheMiss
	}

	var value string
	if err := h.provider.Get(ctx, Empty.Build(LatestScan.Build(deviceID)), &value); err != nil {
		return false, err
	}
	return value == emptyMarker, nil
}

// DeleteNoScansMarker 删除空值标记
func (h *Helper) DeleteNoScansMarker(ctx context.Context, deviceID string) error {
	if h.provider == nil {
		return nil
	}
	return h.provider.Delete(ctx, Empty.Build(LatestScan.Build(deviceID)))
}
