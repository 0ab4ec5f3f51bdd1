package service

import (
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service 基础服务，包含数据库和配置
type Service struct {
	DB     *gorm.DB
	RDB    *redis.Client
	Logger *zap.Logger

	// Notify 发布成功后的通知（WS 推送 + 可选 Redis 扇出）
	Notify *NotifyService

	// Now 时钟，测试可替换
	Now func() time.Time
}

func (s *Service) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
