package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	dashboard "github.com/gm2211/hudson-dashboard"
	"github.com/gm2211/hudson-dashboard/config"
	"github.com/gm2211/hudson-dashboard/logger"
	"github.com/gm2211/hudson-dashboard/middleware"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const apiPrefix = "/api/v1"

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认读取 DASHBOARD_CONFIG）")
	flag.Parse()

	conf, err := config.ReadConf(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(conf.Log.Level, conf.Log.Format, config.Name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(conf, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(conf *config.AppConfig, log *zap.Logger) error {
	// 1. 数据库
	db, err := openDB(conf, log)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	opts := []dashboard.Option{
		dashboard.WithDB(db),
		dashboard.WithLogger(log),
		dashboard.WithNotifyChannel(conf.Notify.Channel),
		dashboard.WithAutoMigrate(conf.DB.AutoMigrate),
		dashboard.WithServiceDebug(conf.HTTP.Debug),
	}

	// 2. Redis（可选）：多实例部署时发布事件经频道扇出
	if conf.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, notifications stay local until it recovers",
				zap.String("addr", conf.Redis.Addr), zap.Error(err))
		}
		cancel()
		opts = append(opts, dashboard.WithRDB(rdb))
	}

	engine, err := dashboard.NewEngine(opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	// 3. 路由
	if !conf.HTTP.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.GinZapLogger(log), gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{apiPrefix + "/ws"})))

	api := r.Group(apiPrefix)
	if conf.RateLimit.PerSecond > 0 {
		api.Use(middleware.GinRateLimit(middleware.NewRateLimiter(rate.Limit(conf.RateLimit.PerSecond), conf.RateLimit.Burst)))
	}
	engine.RegisterRoutes(api)
	dashboard.RegisterSwagger(r, "")

	// 4. 启动，收到信号后优雅退出
	srv := &http.Server{
		Addr:              conf.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("dashboard listening",
			zap.String("addr", conf.HTTP.Addr),
			zap.String("swagger", "/swagger/index.html"),
			zap.String("ws", apiPrefix+"/ws"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func openDB(conf *config.AppConfig, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.NewGormLogger(log, gormlogger.Warn)}
	switch conf.DB.Driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(conf.DB.DSN), gcfg)
		if err != nil {
			return nil, err
		}
		// SQLite 只允许一个写连接
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		db, err := gorm.Open(mysql.Open(conf.DB.DSN), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return db, nil
	}
}
