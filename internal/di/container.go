package di

import (
	"fmt"

	"github.com/anoixa/shelf-scanner/cache"
	"github.com/anoixa/shelf-scanner/config"
	"github.com/anoixa/shelf-scanner/database"
	"github.com/anoixa/shelf-scanner/internal/repositories"
	"github.com/anoixa/shelf-scanner/internal/services/scan"
	"github.com/anoixa/shelf-scanner/storage"
	"github.com/anoixa/shelf-scanner/utils"
	"go.uber.org/zap"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	storageFactory  *storage.Factory
	cacheFactory    *cache.Factory
	databaseFactory *database.Factory
	repositories    *repositories.Repositories
	scanService     *scan.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// NewContainerWith 使用已构建的工厂组装容器，测试中使用
func NewContainerWith(cfg *config.Config, db *database.Factory, st *storage.Factory, c *cache.Factory) *Container {
	container := &Container{
		config:          cfg,
		databaseFactory: db,
		storageFactory:  st,
		cacheFactory:    c,
	}
	container.initRepositories()
	container.initServices()
	return container
}

// Init 初始化所有服务
func (c *Container) Init() error {
	if err := c.InitDatabase(); err != nil {
		return err
	}

	if err := c.InitStorage(); err != nil {
		return err
	}

	if err := c.initCacheFactory(); err != nil {
		return fmt.Errorf("failed to initialize cache factory: %w", err)
	}

	c.initServices()

	utils.Logger().Debug("DI container initialized")
	return nil
}

// InitDatabase 只初始化数据库与仓库（migrate 命令使用）
func (c *Container) InitDatabase() error {
	if c.databaseFactory != nil {
		return nil
	}
	if err := c.initDatabaseFactory(); err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.initRepositories()
	return nil
}

// InitStorage 只初始化存储（setup-bucket 命令使用）
func (c *Container) InitStorage() error {
	if c.storageFactory != nil {
		return nil
	}
	if err := c.initStorageFactory(); err != nil {
		return fmt.Errorf("failed to initialize storage factory: %w", err)
	}
	return nil
}

// initRepositories 初始化所有仓库
func (c *Container) initRepositories() {
	c.repositories = repositories.NewRepositories(c.databaseFactory.GetProvider())
}

// initServices 初始化业务服务
func (c *Container) initServices() {
	var cacheProvider cache.Provider
	if c.cacheFactory != nil {
		cacheProvider = c.cacheFactory.GetProvider()
	}

	c.scanService = scan.NewService(
		c.repositories.Devices,
		c.repositories.Scans,
		c.storageFactory.GetDefault(),
		cache.NewHelper(cacheProvider, c.config.CacheLatestScanTTL),
	)
}

// initDatabaseFactory 初始化数据库工厂
func (c *Container) initDatabaseFactory() error {
	factory, err := database.NewFactory(c.config)
	if err != nil {
		return err
	}
	c.databaseFactory = factory
	return nil
}

// initStorageFactory 初始化存储工厂
func (c *Container) initStorageFactory() error {
	factory, err := storage.NewFactory(c.config)
	if err != nil {
		return err
	}
	c.storageFactory = factory
	return nil
}

// initCacheFactory 初始化缓存工厂
func (c *Container) initCacheFactory() error {
	factory, err := cache.NewFactory(c.config)
	if err != nil {
		return err
	}
	c.cacheFactory = factory
	return nil
}

// GetRepositories 获取所有仓库
func (c *Container) GetRepositories() *repositories.Repositories {
	return c.repositories
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetStorageFactory 获取存储工厂
func (c *Container) GetStorageFactory() *storage.Factory {
	return c.storageFactory
}

// GetCacheFactory 获取缓存工厂
func (c *Container) GetCacheFactory() *cache.Factory {
	return c.cacheFactory
}

// GetScanService 获取扫描服务
func (c *Container) GetScanService() *scan.Service {
	return c.scanService
}

// Close 关闭所有服务
func (c *Container) Close() error {
	logger := utils.Logger()

	if c.cacheFactory != nil {
		if err := c.cacheFactory.Close(); err != nil {
			logger.Warn("Error closing cache factory", zap.Error(err))
		}
	}

	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			logger.Warn("Error closing database factory", zap.Error(err))
		}
	}

	return nil
}
