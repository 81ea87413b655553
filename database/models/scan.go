package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanStatus 扫描记录状态
type ScanStatus string

const (
	// ScanStatusUploaded 上传完成，当前唯一状态
	ScanStatusUploaded ScanStatus = "uploaded"
)

// Scan 一次书架拍照上传
type Scan struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id" example:"aa22666c-0f57-45cb-a449-16efecc04f2e"`
	DeviceID  string     `gorm:"index;not null;size:128" json:"device_id" example:"6f1c2a4e-3b7d-4e8a-9c2f-1d5e7a9b0c3d"`
	ImageURL  string     `gorm:"index;not null" json:"image_url" example:"http://localhost:9000/uploads/6f1c2a4e/1760832000000.jpg"`
	Status    ScanStatus `gorm:"not null;size:32" json:"status" example:"uploaded"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (Scan) TableName() string {
	return "scans"
}

// BeforeCreate 生成 ID 并填充默认状态
func (s *Scan) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = ScanStatusUploaded
	}
	return nil
}
