package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/pkg/apperr"
)

// ==================== 工具函数 ====================

// parseID 解析路径参数中的 ID，非法时直接写 400 并返回 0
func parseID(ctx *gin.Context, key string) int64 {
	id, err := strconv.ParseInt(ctx.Param(key), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的 ID"})
		return 0
	}
	return id
}

// respondError 按错误类型映射 HTTP 状态码
// 业务校验 400，库存不足 409，远端限流 429，远端连接/接口故障 502
func respondError(ctx *gin.Context, err error) {
	var (
		validationErr *apperr.ValidationError
		stockErr      *apperr.InsufficientStockError
		rateLimitErr  *apperr.RateLimitError
		connErr       *apperr.ConnectionError
		apiErr        *apperr.ApiError
	)

	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": validationErr.Message})
	case errors.As(err, &stockErr):
		ctx.JSON(http.StatusConflict, gin.H{
			"code":    409,
			"message": "库存不足",
			"data": gin.H{
				"product_id": stockErr.ProductID,
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			},
		})
	case errors.As(err, &rateLimitErr):
		ctx.JSON(http.StatusTooManyRequests, gin.H{
			"code":    429,
			"message": "远端接口限流",
			"data":    gin.H{"retry_after": int(rateLimitErr.RetryAfter.Seconds())},
		})
	case errors.As(err, &connErr):
		ctx.JSON(http.StatusBadGateway, gin.H{"code": 502, "message": err.Error()})
	case errors.As(err, &apiErr):
		ctx.JSON(http.StatusBadGateway, gin.H{"code": 502, "message": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
	}
}
