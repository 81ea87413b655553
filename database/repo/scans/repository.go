package scans

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/shelf-scanner/database"
	"github.com/anoixa/shelf-scanner/database/models"
	"github.com/anoixa/shelf-scanner/database/repo/base"
)

const newestFirst = "created_at DESC, id DESC"

// ErrImageURLExists 该地址已被另一条扫描记录引用
var ErrImageURLExists = errors.New("image url already belongs to a scan")

// Repository 扫描记录仓库
type Repository struct {
	db   database.Provider
	base *base.Repository[models.Scan]
}

// NewRepository 创建新的扫描记录仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{
		db:   db,
		base: base.NewRepository[models.Scan](db.DB()),
	}
}

// Create 插入扫描记录
func (r *Repository) Create(ctx context.Context, scan *models.Scan) error {
	if err := r.base.Create(ctx, scan); err != nil {
		if database.IsDuplicateError(err) {
			return fmt.Errorf("failed to insert scan: %w", ErrImageURLExists)
		}
		return fmt.Errorf("failed to insert scan: %w", err)
	}
	return nil
}

// GetByID 获取扫描记录，不存在时返回 nil, nil
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Scan, error) {
	return r.base.GetByID(ctx, id)
}

// GetLatestByDevice 设备最近一次扫描，不存在时返回 nil, nil
func (r *Repository) GetLatestByDevice(ctx context.Context, deviceID string) (*models.Scan, error) {
	return r.base.FirstByCondition(ctx, newestFirst, "device_id = ?", deviceID)
}

// ListByDevice 分页获取设备的扫描记录，按时间倒序
func (r *Repository) ListByDevice(ctx context.Context, deviceID string, page, limit int) ([]*models.Scan, int64, error) {
	if page < 1 {
		page = 1
	}

	total, err := r.base.CountByCondition(ctx, "device_id = ?", deviceID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count scans: %w", err)
	}

	var scans []*models.Scan
	err = r.db.DB().WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order(newestFirst).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&scans).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list scans: %w", err)
	}
	return scans, total, nil
}

// ReferencedImageURLs 返回所有被引用的图片地址集合
func (r *Repository) ReferencedImageURLs(ctx context.Context) (map[string]struct{}, error) {
	var urls []string
	if err := r.db.DB().WithContext(ctx).Model(&models.Scan{}).Distinct().Pluck("image_url", &urls).Error; err != nil {
		return nil, fmt.Errorf("failed to load scan image urls: %w", err)
	}

	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set, nil
}
