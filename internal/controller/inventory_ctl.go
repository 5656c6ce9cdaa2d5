package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/internal/api/dto"
	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/service"
)

// InventoryController 库存控制器
type InventoryController struct {
	inventorySvc *service.InventoryService
}

// NewInventoryController 创建库存控制器
func NewInventoryController(inventorySvc *service.InventoryService) *InventoryController {
	return &InventoryController{inventorySvc: inventorySvc}
}

// Adjust 增量调整库存
// push=true 时本地调整成功后再推送到远端；推送失败不回滚本地，
// 响应里带 push_error 提示调用方
func (c *InventoryController) Adjust(ctx *gin.Context) {
	productID := parseID(ctx, "product_id")
	if productID == 0 {
		return
	}

	var req dto.InventoryAdjustReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	tenantID := middleware.GetTenantID(ctx)
	product, err := c.inventorySvc.Adjust(ctx.Request.Context(), tenantID, productID, req.Delta)
	if err != nil {
		respondError(ctx, err)
		return
	}

	data := gin.H{
		"product_id":         product.ID,
		"inventory_quantity": product.InventoryQuantity,
	}
	if req.Push {
		if err := c.inventorySvc.PushAdjustment(ctx.Request.Context(), tenantID, productID, req.Delta); err != nil {
			data["push_error"] = err.Error()
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "库存已调整", "data": data})
}

// Set 绝对值设置库存
func (c *InventoryController) Set(ctx *gin.Context) {
	productID := parseID(ctx, "product_id")
	if productID == 0 {
		return
	}

	var req dto.InventorySetReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	product, err := c.inventorySvc.SetAbsolute(ctx.Request.Context(),
		middleware.GetTenantID(ctx), productID, *req.Quantity)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "库存已设置",
		"data": gin.H{
			"product_id":         product.ID,
			"inventory_quantity": product.InventoryQuantity,
		},
	})
}

// LowStock 低库存商品列表
func (c *InventoryController) LowStock(ctx *gin.Context) {
	products, err := c.inventorySvc.ListLowStock(ctx.Request.Context(), middleware.GetTenantID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": len(products), "list": products},
	})
}

// Stats 库存聚合统计
func (c *InventoryController) Stats(ctx *gin.Context) {
	stats, err := c.inventorySvc.Stats(ctx.Request.Context(), middleware.GetTenantID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": stats})
}
