package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ==================== 请求日志 ====================

// RequestLog 结构化访问日志
// 替代 gin 自带的文本日志，统一走 zap 输出
func RequestLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if tenantID := GetTenantID(c); tenantID > 0 {
			fields = append(fields, zap.Int64("tenant_id", tenantID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("请求完成", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("请求完成", fields...)
		default:
			logger.Info("请求完成", fields...)
		}
	}
}
