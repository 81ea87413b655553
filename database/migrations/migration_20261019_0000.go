package migrations

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
)

// 迁移内使用独立的结构体快照，不随 models 变化

type device20261019 struct {
	DeviceID   string    `gorm:"primaryKey;size:128"`
	LastSeenAt time.Time `gorm:"not null"`
	CreatedAt  time.Time
}

func (device20261019) TableName() string { return "devices" }

func createDevicesTable() *gormigrate.Migration {
	return CreateMigrationFromActions("20261019-0000",
		CreateTableAction(&device20261019{}),
	)
}
