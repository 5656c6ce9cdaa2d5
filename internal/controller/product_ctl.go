package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/internal/api/dto"
	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/service"
)

// ProductController 商品控制器
type ProductController struct {
	productSvc *service.ProductService
}

// NewProductController 创建商品控制器
func NewProductController(productSvc *service.ProductService) *ProductController {
	return &ProductController{productSvc: productSvc}
}

// List 商品列表
func (c *ProductController) List(ctx *gin.Context) {
	var req dto.ProductListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.productSvc.List(ctx.Request.Context(),
		middleware.GetTenantID(ctx), req.Page, req.PageSize)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": resp})
}

// Get 商品详情
func (c *ProductController) Get(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	resp, err := c.productSvc.Get(ctx.Request.Context(), middleware.GetTenantID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": resp})
}

// UpdatePricing 更新商品级定价覆盖
func (c *ProductController) UpdatePricing(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req dto.ProductPricingReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.productSvc.UpdatePricing(ctx.Request.Context(),
		middleware.GetTenantID(ctx), id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "定价已更新", "data": resp})
}
