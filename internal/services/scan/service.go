package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anoixa/shelf-scanner/cache"
	"github.com/anoixa/shelf-scanner/database/models"
	"github.com/anoixa/shelf-scanner/storage"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/anoixa/shelf-scanner/utils/generator"
	"github.com/anoixa/shelf-scanner/utils/validator"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// latestLoadTimeout 合并回源查询的超时，与发起请求的生命周期无关
	latestLoadTimeout = 10 * time.Second
)

// DeviceRepository 设备仓库接口
type DeviceRepository interface {
	Upsert(ctx context.Context, deviceID string, seenAt time.Time) error
}

// ScanRepository 扫描记录仓库接口
type ScanRepository interface {
	Create(ctx context.Context, scan *models.Scan) error
	GetLatestByDevice(ctx context.Context, deviceID string) (*models.Scan, error)
	ListByDevice(ctx context.Context, deviceID string, page, limit int) ([]*models.Scan, int64, error)
}

// Upload 一次上传的输入
type Upload struct {
	DeviceID string
	Filename string
	Data     []byte
}

// Result 上传结果
type Result struct {
	Scan     *models.Scan
	ImageURL string
}

// Service 扫描上传服务
// 流程: 校验 -> upsert 设备 -> 写对象 -> 公开地址 -> 插入扫描记录
// 各步骤顺序执行，失败即返回，不做补偿
type Service struct {
	devices DeviceRepository
	scans   ScanRepository
	storage storage.Provider
	cache   *cache.Helper
	keys    *generator.ObjectKeyGenerator
	group   singleflight.Group
}

// NewService 创建扫描服务
func NewService(devices DeviceRepository, scans ScanRepository, provider storage.Provider, cacheHelper *cache.Helper) *Service {
	return &Service{
		devices: devices,
		scans:   scans,
		storage: provider,
		cache:   cacheHelper,
		keys:    generator.NewObjectKeyGenerator(),
	}
}

// WithKeyGenerator 替换对象键生成器，测试中固定时钟
func (s *Service) WithKeyGenerator(g *generator.ObjectKeyGenerator) *Service {
	s.keys = g
	return s
}

// Submit 处理一次扫描上传
func (s *Service) Submit(ctx context.Context, in Upload) (*Result, error) {
	deviceID := strings.TrimSpace(in.DeviceID)
	if err := validator.ValidateDeviceID(deviceID); err != nil {
		if errors.Is(err, validator.ErrDeviceIDMissing) {
			return nil, invalidInput("Device ID is required", err)
		}
		return nil, invalidInput("Invalid device ID", err)
	}

	if len(in.Data) == 0 {
		return nil, invalidInput("No image file provided", nil)
	}

	ok, mimeType := validator.IsImageBytes(in.Data)
	if !ok {
		return nil, invalidInput("File must be an image", nil)
	}

	now := s.keys.Now()
	logger := utils.Logger().With(zap.String("device_id", utils.SanitizeLogDeviceID(deviceID)))

	if err := s.devices.Upsert(ctx, deviceID, now); err != nil {
		return nil, downstream(StepUpsertDevice, err)
	}

	key := s.keys.Generate(deviceID, objectExtension(in.Filename, mimeType), now)
	if err := s.storage.PutObject(ctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), mimeType); err != nil {
		return nil, downstream(StepUploadImage, err)
	}

	imageURL := s.storage.PublicURL(key)

	scan := &models.Scan{
		DeviceID:  deviceID,
		ImageURL:  imageURL,
		Status:    models.ScanStatusUploaded,
		CreatedAt: now,
	}
	if err := s.scans.Create(ctx, scan); err != nil {
		// 对象已写入，留给 clean 命令回收
		logger.Warn("Scan insert failed, stored object is orphaned",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, downstream(StepInsertScan, err)
	}

	if s.cache != nil {
		if err := s.cache.CacheLatestScanIfNewer(ctx, scan); err != nil {
			logger.Warn("Failed to cache latest scan", zap.Error(err))
		}
	}

	logger.Info("Scan uploaded",
		zap.String("scan_id", scan.ID),
		zap.String("key", key),
		zap.Int("size", len(in.Data)),
		zap.String("content_type", mimeType),
	)

	return &Result{Scan: scan, ImageURL: imageURL}, nil
}

// objectExtension 优先使用原始文件扩展名，不安全时按嗅探的 MIME 推断
func objectExtension(filename, mimeType string) string {
	ext := strings.TrimPrefix(utils.GetExtensionFromFilename(filename), ".")
	if ext != "" && len(ext) <= 10 && isAlnum(ext) {
		return ext
	}
	return strings.TrimPrefix(utils.GetSafeExtension(mimeType), ".")
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Latest 设备最近一次扫描，优先读缓存，并发回源合并为一次查询
func (s *Service) Latest(ctx context.Context, deviceID string) (*models.Scan, error) {
	deviceID = strings.TrimSpace(deviceID)
	if err := validator.ValidateDeviceID(deviceID); err != nil {
		return nil, invalidInput("Invalid device ID", err)
	}

	if s.cache != nil {
		var cached models.Scan
		if err := s.cache.GetCachedLatestScan(ctx, deviceID, &cached); err == nil {
			return &cached, nil
		}
		if empty, err := s.cache.HasNoScans(ctx, deviceID); err == nil && empty {
			return nil, ErrNotFound
		}
	}

	// 同一设备的并发回源共享一次查询，首个调用方断开不影响其他等待者
	v, err, _ := s.group.Do(deviceID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), latestLoadTimeout)
		defer cancel()
		return s.scans.GetLatestByDevice(loadCtx, deviceID)
	})
	if err != nil {
		return nil, downstream(StepQuery, err)
	}

	latest, _ := v.(*models.Scan)
	if latest == nil {
		if s.cache != nil {
			_ = s.cache.CacheNoScans(ctx, deviceID)
		}
		return nil, ErrNotFound
	}

	if s.cache != nil {
		if err := s.cache.CacheLatestScanIfNewer(ctx, latest); err != nil {
			utils.Logger().Warn("Failed to cache latest scan", zap.Error(err))
		}
	}

	// singleflight 的结果被多个调用方共享，返回副本
	out := *latest
	return &out, nil
}

// Page 分页结果
type Page struct {
	Scans []*models.Scan
	Total int64
	Page  int
	Limit int
}

// List 分页列出设备的扫描记录，按时间倒序
func (s *Service) List(ctx context.Context, deviceID string, page, limit int) (*Page, error) {
	deviceID = strings.TrimSpace(deviceID)
	if err := validator.ValidateDeviceID(deviceID); err != nil {
		return nil, invalidInput("Invalid device ID", err)
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return nil, invalidInput(fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit), nil)
	}

	scans, total, err := s.scans.ListByDevice(ctx, deviceID, page, limit)
	if err != nil {
		return nil, downstream(StepQuery, err)
	}
	if scans == nil {
		scans = []*models.Scan{}
	}

	return &Page{Scans: scans, Total: total, Page: page, Limit: limit}, nil
}
