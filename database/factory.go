package database

import (
	"context"
	"fmt"

	"github.com/anoixa/shelf-scanner/config"
	"github.com/anoixa/shelf-scanner/database/migrations"
	"github.com/anoixa/shelf-scanner/utils"
	"go.uber.org/zap"
)

// Factory 数据库工厂 - 负责创建和管理数据库提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建新的数据库工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	utils.Logger().Info("Database provider initialized", zap.String("type", provider.Name()))

	return &Factory{
		provider: provider,
	}, nil
}

// NewFactoryWithProvider 使用已有提供者创建工厂
func NewFactoryWithProvider(p Provider) *Factory {
	return &Factory{provider: p}
}

// GetProvider 获取数据库提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Migrate 应用未执行的版本化迁移
func (f *Factory) Migrate(ctx context.Context) error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}

	m := migrations.New()
	db := f.provider.DB()

	before, err := m.CountMigrationsApplied(db)
	if err != nil {
		return fmt.Errorf("failed to read migration state: %w", err)
	}
	if err := m.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	after, err := m.CountMigrationsApplied(db)
	if err != nil {
		return fmt.Errorf("failed to read migration state: %w", err)
	}

	utils.Logger().Info("Database migrations applied",
		zap.Int("applied", after-before),
		zap.Int("total", after),
	)
	return nil
}

// MigrateTo 迁移到指定版本（含），之后的迁移不执行
func (f *Factory) MigrateTo(ctx context.Context, migrationID string) error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	if err := migrations.New().MigrateTo(ctx, f.provider.DB(), migrationID); err != nil {
		return fmt.Errorf("failed to migrate database to %s: %w", migrationID, err)
	}
	utils.Logger().Info("Database migrated", zap.String("target", migrationID))
	return nil
}

// Rollback 回滚最近一次迁移
func (f *Factory) Rollback(ctx context.Context) error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	if err := migrations.New().RollbackLast(ctx, f.provider.DB()); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// Ping 检查数据库连接
func (f *Factory) Ping(ctx context.Context) error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	return f.provider.Ping(ctx)
}

// Close 关闭数据库连接
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}
