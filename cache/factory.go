package cache

import (
	"fmt"

	"github.com/anoixa/shelf-scanner/cache/memory"
	"github.com/anoixa/shelf-scanner/cache/redis"
	"github.com/anoixa/shelf-scanner/config"
	"github.com/anoixa/shelf-scanner/utils"
	"go.uber.org/zap"
)

// Factory 缓存工厂
type Factory struct {
	provider Provider
}

// NewFactory 按 cache_type 创建缓存提供者
func NewFactory(cfg *config.Config) (*Factory, error) {
	var (
		provider Provider
		err      error
	)

	switch cfg.CacheType {
	case "memory", "":
		provider, err = memory.NewMemory(memory.DefaultConfig())
	case "redis":
		provider, err = redis.NewRedisFromConfig(&redis.Config{
			Address:   cfg.CacheRedisAddr,
			Password:  cfg.CacheRedisPassword,
			DB:        cfg.CacheRedisDB,
			KeyPrefix: "shelf-scanner:",
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cache provider: %w", err)
	}

	utils.Logger().Info("Cache provider initialized", zap.String("type", provider.Name()))
	return &Factory{provider: provider}, nil
}

// NewFactoryWithProvider 使用已有提供者创建工厂
func NewFactoryWithProvider(p Provider) *Factory {
	return &Factory{provider: p}
}

// GetProvider 获取缓存提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close 关闭缓存提供者
func (f *Factory) Close() error {
	if f.provider == nil {
		return nil
	}
	return f.provider.Close()
}
