package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ==================== 租户上下文 ====================

// 租户身份来自网关注入的 X-Tenant-ID 头，本服务不做认证，只做归属校验

const tenantIDKey = "tenant_id"

type tenantContextKey struct{}

// WithTenantID 注入租户 ID 到 context
func WithTenantID(ctx context.Context, tenantID int64) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tenantID)
}

// TenantFromContext 从 request context 获取租户 ID
func TenantFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(tenantContextKey{}).(int64); ok {
		return id
	}
	return 0
}

// GetTenantID 从 gin 上下文获取租户 ID
func GetTenantID(c *gin.Context) int64 {
	if v, ok := c.Get(tenantIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// ==================== Gin 中间件 ====================

// TenantContext 租户上下文中间件
// 缺失或非法的 X-Tenant-ID 直接 400，不放行到业务层
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Tenant-ID")
		tenantID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tenantID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "缺少或非法的 X-Tenant-ID",
			})
			c.Abort()
			return
		}

		c.Set(tenantIDKey, tenantID)
		c.Request = c.Request.WithContext(WithTenantID(c.Request.Context(), tenantID))
		c.Next()
	}
}
