package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// zapLogger 将 GORM 日志输出到 zap
type zapLogger struct {
	logger                    *zap.SugaredLogger
	SlowThreshold             time.Duration
	LogLevel                  logger.LogLevel
	IgnoreRecordNotFoundError bool
}

// NewLogger 创建 GORM 日志适配器
func NewLogger(sugar *zap.SugaredLogger, level logger.LogLevel) logger.Interface {
	return &zapLogger{
		logger:                    sugar,
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	}
}

func (z *zapLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &zapLogger{
		logger:                    z.logger,
		SlowThreshold:             z.SlowThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: z.IgnoreRecordNotFoundError,
	}
}

func (z *zapLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if z.LogLevel >= logger.Info {
		z.logger.Infof(msg, args...)
	}
}

func (z *zapLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if z.LogLevel >= logger.Warn {
		z.logger.Warnf(msg, args...)
	}
}

func (z *zapLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if z.LogLevel >= logger.Error {
		z.logger.Errorf(msg, args...)
	}
}

func (z *zapLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if z.LogLevel <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && z.LogLevel >= logger.Error && (!errors.Is(err, gorm.ErrRecordNotFound) || !z.IgnoreRecordNotFoundError):
		sql, rows := fc()
		z.logger.With(
			"line_number", utils.FileWithLineNum(),
			"error", err.Error(),
			"rows", rows,
			"elapsed_ms", float64(elapsed.Nanoseconds())/1e6,
		).Error(sql)
	case elapsed > z.SlowThreshold && z.SlowThreshold != 0 && z.LogLevel >= logger.Warn:
		sql, rows := fc()
		z.logger.With(
			"line_number", utils.FileWithLineNum(),
			"slow", fmt.Sprintf("SLOW SQL >= %v", z.SlowThreshold),
			"rows", rows,
			"elapsed_ms", float64(elapsed.Nanoseconds())/1e6,
		).Warn(sql)
	case z.LogLevel == logger.Info:
		sql, rows := fc()
		z.logger.With(
			"line_number", utils.FileWithLineNum(),
			"rows", rows,
			"elapsed_ms", float64(elapsed.Nanoseconds())/1e6,
		).Debug(sql)
	}
}
