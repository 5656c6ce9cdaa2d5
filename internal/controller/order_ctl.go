package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/internal/api/dto"
	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/internal/service"
)

// OrderController 订单控制器
type OrderController struct {
	orderSvc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(orderSvc *service.OrderService) *OrderController {
	return &OrderController{orderSvc: orderSvc}
}

// Create 从购物车创建订单
func (c *OrderController) Create(ctx *gin.Context) {
	var req dto.OrderCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	order, err := c.orderSvc.CreateOrderFromCart(ctx.Request.Context(),
		middleware.GetTenantID(ctx), req.StylistID, req.PaymentMethod, req.Notes)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "订单创建成功", "data": order})
}

// List 订单列表
func (c *OrderController) List(ctx *gin.Context) {
	var req dto.OrderListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	orders, total, err := c.orderSvc.List(ctx.Request.Context(), repository.OrderFilter{
		TenantID:  middleware.GetTenantID(ctx),
		StylistID: req.StylistID,
		Status:    req.Status,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": orders},
	})
}

// Get 订单详情
func (c *OrderController) Get(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	order, err := c.orderSvc.Get(ctx.Request.Context(), middleware.GetTenantID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": order})
}

// UpdateStatus 订单状态迁移
func (c *OrderController) UpdateStatus(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req dto.OrderStatusReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	order, err := c.orderSvc.UpdateStatus(ctx.Request.Context(),
		middleware.GetTenantID(ctx), id, req.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "状态已更新", "data": order})
}
