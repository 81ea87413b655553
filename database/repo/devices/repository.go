package devices

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/shelf-scanner/database"
	"github.com/anoixa/shelf-scanner/database/models"
	"github.com/anoixa/shelf-scanner/database/repo/base"
	"gorm.io/gorm/clause"
)

// Repository 设备仓库 - 封装所有设备相关的数据库操作
type Repository struct {
	db   database.Provider
	base *base.Repository[models.Device]
}

// NewRepository 创建新的设备仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{
		db:   db,
		base: base.NewRepository[models.Device](db.DB()),
	}
}

// Upsert 按 device_id 插入或刷新 last_seen_at
// 单条 INSERT ... ON CONFLICT 语句，同一设备并发提交也不会产生重复行
func (r *Repository) Upsert(ctx context.Context, deviceID string, seenAt time.Time) error {
	device := &models.Device{
		DeviceID:   deviceID,
		LastSeenAt: seenAt,
		CreatedAt:  seenAt,
	}

	err := r.db.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at"}),
	}).Create(device).Error
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

// GetByDeviceID 获取设备，不存在时返回 nil, nil
func (r *Repository) GetByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	return r.base.GetByID(ctx, deviceID)
}

// Count 设备总数
func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.base.Count(ctx)
}
