package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ContextRequestIDKey gin context 里保存请求 ID 的 key
	ContextRequestIDKey = "request_id"
	// HeaderRequestID 请求 ID 的请求/响应头；上游已带时沿用
	HeaderRequestID = "X-Request-ID"
)

// GinZapLogger 为每个请求分配 request_id，并在请求结束后用 zap 记一条访问日志。
// 5xx 记 Error，4xx 记 Warn，其余记 Info。
//
// 使用：router.Use(middleware.GinZapLogger(logger))
func GinZapLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, rid)
		c.Header(HeaderRequestID, rid)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("http request", fields...)
		case status >= 400:
			logger.Warn("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}

// RequestID 当前请求的 ID；未经过 GinZapLogger 时为空
func RequestID(c *gin.Context) string {
	return c.GetString(ContextRequestIDKey)
}
