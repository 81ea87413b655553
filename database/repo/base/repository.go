// Package base 提供通用的 Repository 基类
package base

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 通用仓库基类
type Repository[T any] struct {
	db *gorm.DB
}

// NewRepository 创建新的通用仓库
func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// Create 创建记录
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// GetByID 通过主键获取记录，不存在时返回 nil, nil
func (r *Repository[T]) GetByID(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// Count 获取记录总数
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Count(&count).Error
	return count, err
}

// CountByCondition 根据条件计数
func (r *Repository[T]) CountByCondition(ctx context.Context, condition string, args ...interface{}) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(condition, args...).Count(&count).Error
	return count, err
}

// FirstByCondition 根据条件查询第一条记录，不存在时返回 nil, nil
func (r *Repository[T]) FirstByCondition(ctx context.Context, order string, condition string, args ...interface{}) (*T, error) {
	var entity T
	db := r.db.WithContext(ctx).Where(condition, args...)
	if order != "" {
		db = db.Order(order)
	}
	result := db.Limit(1).Find(&entity)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &entity, nil
}
