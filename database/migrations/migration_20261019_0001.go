package migrations

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
)

type scan20261019 struct {
	ID        string         `gorm:"primaryKey;size:36"`
	DeviceID  string         `gorm:"index;not null;size:128"`
	Device    device20261019 `gorm:"foreignKey:DeviceID;references:DeviceID"`
	ImageURL  string         `gorm:"index;not null"`
	Status    string         `gorm:"not null;size:32"`
	CreatedAt time.Time      `gorm:"index"`
}

func (scan20261019) TableName() string { return "scans" }

func createScansTable() *gormigrate.Migration {
	return CreateMigrationFromActions("20261019-0001",
		CreateTableAction(&scan20261019{}),
	)
}
