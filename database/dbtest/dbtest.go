// Package dbtest 为测试提供迁移完成的内存 SQLite 数据库
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/anoixa/shelf-scanner/database"
	"github.com/anoixa/shelf-scanner/database/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewProvider 每个测试独立的内存库，已应用全部迁移
func NewProvider(t testing.TB) *database.GormProvider {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, migrations.New().Migrate(context.Background(), db))

	p := database.NewGormProviderFromDB(db, "sqlite")
	t.Cleanup(func() { _ = p.Close() })
	return p
}
