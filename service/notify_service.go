package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gm2211/hudson-dashboard/cons"
	"github.com/gm2211/hudson-dashboard/message"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const notifyTimeout = 3 * time.Second

// NotifyService 发布成功后通知观看端。
// 配置了 Redis 时事件先发到频道，由每个实例的 Subscribe 转发给本地 WS；
// 否则直接推送本地 WS。通知是尽力而为，失败只记日志。
type NotifyService struct {
	rdb       *redis.Client
	channel   string
	broadcast func([]byte)
	logger    *zap.Logger
}

func NewNotifyService(rdb *redis.Client, channel string, broadcast func([]byte), logger *zap.Logger) *NotifyService {
	if channel == "" {
		channel = cons.DefaultNotifyChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifyService{rdb: rdb, channel: channel, broadcast: broadcast, logger: logger}
}

// Channel Redis 频道名
func (n *NotifyService) Channel() string {
	return n.channel
}

// Published 通知：version 已发布
func (n *NotifyService) Published(ctx context.Context, version int, at time.Time) {
	evt := message.Event{
		Type:        cons.EventPublished,
		EventID:     uuid.NewString(),
		Version:     version,
		PublishedAt: at,
	}
	b, err := json.Marshal(evt)
	if err != nil {
		n.logger.Error("marshal publish event failed", zap.Error(err))
		return
	}

	if n.rdb != nil {
		// 请求结束不应中断已提交发布的通知
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		err := n.rdb.Publish(pctx, n.channel, b).Err()
		if err == nil {
			return
		}
		n.logger.Warn("redis publish failed, falling back to local push",
			zap.String("channel", n.channel),
			zap.Int("version", version),
			zap.Error(err),
		)
	}
	n.deliver(b)
}

// Subscribe 订阅 Redis 频道，把收到的事件推送给本地观看端。阻塞直到 ctx 结束。
func (n *NotifyService) Subscribe(ctx context.Context) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, n.channel)
	defer sub.Close()

	// 等待订阅确认
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	n.logger.Info("notify subscriber started", zap.String("channel", n.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			n.deliver([]byte(msg.Payload))
		}
	}
}

func (n *NotifyService) deliver(b []byte) {
	if n.broadcast == nil {
		return
	}
	n.broadcast(b)
}
