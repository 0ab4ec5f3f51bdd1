package logger

import (
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormSlowThreshold 超过该耗时的 SQL 记为慢查询
const GormSlowThreshold = 200 * time.Millisecond

// NewGormLogger gorm 日志输出到 zap（logger 名为 gorm）。
// 未命中记录是正常分支（没有配置、还没有发布过），不记日志。
func NewGormLogger(zl *zap.Logger, level gormlogger.LogLevel) gormlogger.Interface {
	if zl == nil {
		zl = zap.NewNop()
	}
	return gormlogger.New(zap.NewStdLog(zl.Named("gorm")), gormlogger.Config{
		SlowThreshold:             GormSlowThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
