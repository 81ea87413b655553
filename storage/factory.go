package storage

import (
	"fmt"
	"time"

	"github.com/anoixa/shelf-scanner/config"
	"github.com/anoixa/shelf-scanner/utils"
	"go.uber.org/zap"
)

// ObjectsRoutePrefix 服务端对象代理路由前缀
const ObjectsRoutePrefix = "/objects"

// Factory 存储工厂 - 负责创建配置的存储提供者
type Factory struct {
	provider Provider
	name     string
}

// NewFactory 根据 storage_type 创建存储提供者，并附加存储桶策略
func NewFactory(cfg *config.Config) (*Factory, error) {
	logger := utils.Logger()

	publicBase := cfg.StoragePublicBaseURL
	name := cfg.StorageType
	if name == "" || name == "s3" {
		name = "minio"
	}

	var (
		provider Provider
		err      error
	)

	switch name {
	case "minio":
		provider, err = NewMinioStorage(MinioConfig{
			Endpoint:        cfg.StorageEndpoint,
			AccessKeyID:     cfg.StorageAccessKey,
			SecretAccessKey: cfg.StorageSecretKey,
			UseSSL:          cfg.StorageUseSSL,
			Region:          cfg.StorageRegion,
			BucketName:      cfg.StorageBucket,
			PublicBaseURL:   publicBase,
		})
	case "webdav":
		if publicBase == "" {
			publicBase = cfg.BaseURL() + ObjectsRoutePrefix
		}
		provider, err = NewWebDAVStorage(WebDAVConfig{
			URL:           cfg.StorageWebDAVURL,
			Username:      cfg.StorageWebDAVUsername,
			Password:      cfg.StorageWebDAVPassword,
			BucketName:    cfg.StorageBucket,
			PublicBaseURL: publicBase,
			Timeout:       30 * time.Second,
		})
	case "local":
		if publicBase == "" {
			publicBase = cfg.BaseURL() + ObjectsRoutePrefix
		}
		provider, err = NewLocalStorage(cfg.StorageLocalPath, cfg.StorageBucket, publicBase)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", name, err)
	}

	logger.Info("Storage provider initialized",
		zap.String("type", name),
		zap.String("bucket", cfg.StorageBucket),
	)

	return &Factory{
		provider: WithBucketPolicy(provider, cfg.MaxUploadBytes(), cfg.AllowedMimeTypes()),
		name:     name,
	}, nil
}

// NewFactoryWithProvider 使用已有提供者创建工厂
func NewFactoryWithProvider(p Provider) *Factory {
	return &Factory{provider: p, name: p.Name()}
}

// GetDefault 获取默认存储提供者
func (f *Factory) GetDefault() Provider {
	return f.provider
}

// GetDefaultName 获取默认存储提供者名称
func (f *Factory) GetDefaultName() string {
	return f.name
}

// BucketOptionsFromConfig 存储桶创建参数：公开读、大小上限、MIME 白名单
func BucketOptionsFromConfig(cfg *config.Config) BucketOptions {
	return BucketOptions{
		Public:           true,
		FileSizeLimit:    cfg.MaxUploadBytes(),
		AllowedMimeTypes: cfg.AllowedMimeTypes(),
	}
}
