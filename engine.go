package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gm2211/hudson-dashboard/cons"
	"github.com/gm2211/hudson-dashboard/service"
	"go.uber.org/zap"
)

type DashboardEngine struct {
	config *Config
	logger *zap.Logger

	EntityService    *service.EntityService
	ProjectorService *service.ProjectorService
	PublishService   *service.PublishService
	SnapshotService  *service.SnapshotService
	NotifyService    *service.NotifyService
	WsServer         *WsServer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调。每次调用返回独立的引擎，用完调用 Close。
func NewEngine(opts ...Option) (*DashboardEngine, error) {
	c := &Config{
		NotifyChannel: cons.DefaultNotifyChannel,
		AutoMigrate:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.DB == nil {
		return nil, errors.New("dashboard: WithDB is required")
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	e := &DashboardEngine{config: c, logger: c.Logger}
	if c.AutoMigrate {
		if err := e.AutoMigrate(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	// 初始化 WS
	e.WsServer = NewWsServer(c.Logger)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.WsServer.Run(ctx)
	}()

	// 发布通知：推送到本地 WS，配置了 Redis 时经频道扇出
	e.NotifyService = service.NewNotifyService(c.RDB, c.NotifyChannel, e.WsServer.Broadcast, c.Logger)

	baseService := &service.Service{
		DB:     c.DB,
		RDB:    c.RDB,
		Logger: c.Logger,
		Notify: e.NotifyService,
	}
	e.EntityService = service.NewEntityService(baseService)
	e.ProjectorService = service.NewProjectorService(baseService)
	e.PublishService = service.NewPublishService(baseService)
	e.SnapshotService = service.NewSnapshotService(baseService)

	if c.RDB != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.runSubscriber(ctx)
		}()
	}
	return e, nil
}

// runSubscriber 订阅断开后指数退避重连
func (e *DashboardEngine) runSubscriber(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		err := e.NotifyService.Subscribe(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			e.logger.Error("notify subscriber failed",
				zap.String("channel", e.NotifyService.Channel()),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
		} else {
			backoff = time.Second
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if err != nil {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// Close 停止 WS 与订阅协程，断开所有观看端
func (e *DashboardEngine) Close() {
	e.cancel()
	e.wg.Wait()
}
