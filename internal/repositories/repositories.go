package repositories

import (
	"github.com/anoixa/shelf-scanner/database"
	"github.com/anoixa/shelf-scanner/database/repo/devices"
	"github.com/anoixa/shelf-scanner/database/repo/scans"
)

// Repositories 集中管理所有数据库仓库
type Repositories struct {
	Devices *devices.Repository
	Scans   *scans.Repository
}

// NewRepositories 创建所有仓库实例
func NewRepositories(provider database.Provider) *Repositories {
	return &Repositories{
		Devices: devices.NewRepository(provider),
		Scans:   scans.NewRepository(provider),
	}
}
