// Package migrations 版本化数据库迁移
package migrations

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrations 迁移列表及 gormigrate 选项
type Migrations struct {
	Migrations  []*gormigrate.Migration
	GormOptions *gormigrate.Options
}

// New 返回全部迁移，按 ID 递增排列
func New() *Migrations {
	return &Migrations{
		GormOptions: &gormigrate.Options{
			TableName:      "schema_migrations",
			IDColumnName:   "id",
			IDColumnSize:   40,
			UseTransaction: false,
		},
		Migrations: []*gormigrate.Migration{
			createDevicesTable(),
			createScansTable(),
			addScanIndexes(),
		},
	}
}

// Migrate 应用所有未执行的迁移
func (m *Migrations) Migrate(ctx context.Context, db *gorm.DB) error {
	return gormigrate.New(db.WithContext(ctx), m.GormOptions, m.Migrations).Migrate()
}

// MigrateTo 迁移到指定版本
func (m *Migrations) MigrateTo(ctx context.Context, db *gorm.DB, migrationID string) error {
	return gormigrate.New(db.WithContext(ctx), m.GormOptions, m.Migrations).MigrateTo(migrationID)
}

// RollbackLast 回滚最近一次迁移
func (m *Migrations) RollbackLast(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := gormigrate.New(db, m.GormOptions, m.Migrations).RollbackLast(); err != nil {
		return err
	}
	return m.deleteMigrationTableIfEmpty(db)
}

func (m *Migrations) deleteMigrationTableIfEmpty(db *gorm.DB) error {
	count, err := m.CountMigrationsApplied(db)
	if err != nil {
		return err
	}
	if count == 0 && db.Migrator().HasTable(m.GormOptions.TableName) {
		if err := db.Migrator().DropTable(m.GormOptions.TableName); err != nil {
			return fmt.Errorf("could not drop migration table: %w", err)
		}
	}
	return nil
}

// CountMigrationsApplied 已执行的迁移数量
func (m *Migrations) CountMigrationsApplied(db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(m.GormOptions.TableName) {
		return 0, nil
	}
	sql := fmt.Sprintf("SELECT count(%s) AS id FROM %s", m.GormOptions.IDColumnName, m.GormOptions.TableName)
	var count int
	if err := db.Raw(sql).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MigrationAction 可逆的迁移步骤，apply=false 时执行回滚
type MigrationAction func(tx *gorm.DB, apply bool) error

func callerInfo() string {
	if _, file, no, ok := runtime.Caller(2); ok {
		return fmt.Sprintf("[ %s:%d ]", file, no)
	}
	return ""
}

// CreateTableAction 建表 / 删表
func CreateTableAction(table interface{}) MigrationAction {
	caller := callerInfo()
	return func(tx *gorm.DB, apply bool) error {
		var err error
		if apply {
			err = tx.AutoMigrate(table)
		} else {
			err = tx.Migrator().DropTable(table)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", caller, err)
		}
		return nil
	}
}

// ExecAction 执行原始 SQL
func ExecAction(applySQL string, unapplySQL string) MigrationAction {
	caller := callerInfo()
	return func(tx *gorm.DB, apply bool) error {
		sql := unapplySQL
		if apply {
			sql = applySQL
		}
		if sql == "" {
			return nil
		}
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("%s: %w", caller, err)
		}
		return nil
	}
}

// CreateMigrationFromActions 由步骤组装迁移，回滚时逆序执行
func CreateMigrationFromActions(id string, actions ...MigrationAction) *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: id,
		Migrate: func(tx *gorm.DB) error {
			for _, action := range actions {
				if err := action(tx, true); err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			for i := len(actions) - 1; i >= 0; i-- {
				if err := actions[i](tx, false); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
