package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/internal/controller"
	"shopify_sync_v1/internal/middleware"
)

// InitRoutes 注册所有路由
// webhook 路由不走租户中间件，租户归属由发送方店铺域名反查
func InitRoutes(r *gin.Engine,
	webhookCtl *controller.WebhookController,
	connectionCtl *controller.ConnectionController,
	syncCtl *controller.SyncController,
	productCtl *controller.ProductController,
	inventoryCtl *controller.InventoryController,
	cartCtl *controller.CartController,
	orderCtl *controller.OrderController,
	affiliateCtl *controller.AffiliateController,
	settingsCtl *controller.SettingsController,
	syncCooldown time.Duration) {

	api := r.Group("/api")

	// webhook 入口（平台回调，无租户头）
	api.POST("/webhooks/shopify", webhookCtl.Handle)

	// 以下路由全部要求 X-Tenant-ID
	tenant := api.Group("", middleware.TenantContext())
	{
		// connection 平台连接
		connections := tenant.Group("/connections")
		{
			connections.POST("", connectionCtl.Create)
			connections.GET("", connectionCtl.List)
			connections.PUT("/:id/token", connectionCtl.UpdateToken)
			connections.DELETE("/:id", connectionCtl.Deactivate)
		}

		// sync 手动同步，连接维度冷却限流
		tenant.POST("/sync/:connection_id",
			middleware.SyncRateLimit(syncCooldown),
			syncCtl.TriggerFullSync)
		tenant.GET("/sync/:connection_id/summary", syncCtl.LastSummary)

		// product 商品镜像
		products := tenant.Group("/products")
		{
			products.GET("", productCtl.List)
			products.GET("/:id", productCtl.Get)
			products.PUT("/:id/pricing", productCtl.UpdatePricing)
		}

		// inventory 库存台账
		inventory := tenant.Group("/inventory")
		{
			inventory.GET("/low-stock", inventoryCtl.LowStock)
			inventory.GET("/stats", inventoryCtl.Stats)
			inventory.POST("/:product_id/adjust", inventoryCtl.Adjust)
			inventory.PUT("/:product_id", inventoryCtl.Set)
		}

		// cart 购物车
		cart := tenant.Group("/cart")
		{
			cart.GET("", cartCtl.Get)
			cart.POST("/items", cartCtl.AddItem)
			cart.DELETE("/items/:id", cartCtl.RemoveItem)
		}

		// order B2B 订单
		orders := tenant.Group("/orders")
		{
			orders.POST("", orderCtl.Create)
			orders.GET("", orderCtl.List)
			orders.GET("/:id", orderCtl.Get)
			orders.PUT("/:id/status", orderCtl.UpdateStatus)
		}

		// affiliate 推荐订单（只读）
		tenant.GET("/affiliate-orders", affiliateCtl.List)

		// settings 租户定价配置
		settings := tenant.Group("/settings")
		{
			settings.GET("", settingsCtl.Get)
			settings.PUT("", settingsCtl.Upsert)
		}
	}
}
