package dashboard

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	// Debug 为 true 时 500 响应带上底层错误信息
	Debug bool
}

type Config struct {
	DB     *gorm.DB
	RDB    *redis.Client
	Logger *zap.Logger

	// NotifyChannel 发布事件的 Redis 频道（仅配置了 RDB 时使用）
	NotifyChannel string
	// AutoMigrate 创建引擎时是否自动建表，默认 true
	AutoMigrate bool

	Service ServiceConfig
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

// WithRDB 配置 Redis 后，发布事件经 Redis 频道扇出到所有实例
func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func WithNotifyChannel(channel string) Option {
	return func(c *Config) {
		c.NotifyChannel = channel
	}
}

func WithAutoMigrate(enabled bool) Option {
	return func(c *Config) {
		c.AutoMigrate = enabled
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}
