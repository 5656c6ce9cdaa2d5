package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 同步限流中间件 ====================

// SyncRateLimit 全量同步限流中间件，按连接维度冷却
//
// 使用示例:
//
//	router.POST("/api/sync/:connection_id",
//	    middleware.SyncRateLimit(cooldown),
//	    syncCtl.TriggerFullSync,
//	)
func SyncRateLimit(interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param("connection_id")
		connectionID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的连接 ID",
			})
			c.Abort()
			return
		}

		result := GetLimiter().Check(ConnectionSyncKey(connectionID), interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": int(result.RetryAfter.Seconds()),
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ==================== 辅助函数 ====================

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 60 {
		return fmt.Sprintf("同步冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("同步冷却中，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("同步冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}

// ==================== 手动限流检查（供 Task 层使用）====================

// MarkSyncExecuted 标记某连接的同步已执行
func MarkSyncExecuted(connectionID int64) {
	GetLimiter().MarkExecuted(ConnectionSyncKey(connectionID))
}
