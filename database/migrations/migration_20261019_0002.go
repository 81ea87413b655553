package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
)

// 对象键不会被覆盖，每个 image_url 只能属于一条扫描记录
func addScanIndexes() *gormigrate.Migration {
	return CreateMigrationFromActions("20261019-0002",
		ExecAction(
			"CREATE UNIQUE INDEX IF NOT EXISTS uniq_scans_image_url ON scans (image_url)",
			"DROP INDEX IF EXISTS uniq_scans_image_url",
		),
		ExecAction(
			"CREATE INDEX IF NOT EXISTS idx_scans_device_created ON scans (device_id, created_at DESC)",
			"DROP INDEX IF EXISTS idx_scans_device_created",
		),
	)
}
