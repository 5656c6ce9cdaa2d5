package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/repository"
)

// AffiliateController 推荐订单控制器（只读）
// 推荐订单由远端 webhook 创建，这里只提供查询
type AffiliateController struct {
	affiliateRepo repository.AffiliateOrderRepository
}

// NewAffiliateController 创建推荐订单控制器
func NewAffiliateController(affiliateRepo repository.AffiliateOrderRepository) *AffiliateController {
	return &AffiliateController{affiliateRepo: affiliateRepo}
}

// List 推荐订单列表
func (c *AffiliateController) List(ctx *gin.Context) {
	var req struct {
		Page     int `form:"page,default=1"`
		PageSize int `form:"page_size,default=20"`
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	orders, total, err := c.affiliateRepo.ListByTenant(ctx.Request.Context(),
		middleware.GetTenantID(ctx), req.Page, req.PageSize)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": orders},
	})
}
