package models

import "time"

// Device 客户端安装实例，device_id 由客户端生成
type Device struct {
	DeviceID   string    `gorm:"primaryKey;size:128" json:"device_id" example:"6f1c2a4e-3b7d-4e8a-9c2f-1d5e7a9b0c3d"`
	LastSeenAt time.Time `gorm:"not null" json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Device) TableName() string {
	return "devices"
}
