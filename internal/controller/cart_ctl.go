package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/internal/api/dto"
	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/service"
)

// CartController 购物车控制器
type CartController struct {
	cartSvc *service.CartService
}

// NewCartController 创建购物车控制器
func NewCartController(cartSvc *service.CartService) *CartController {
	return &CartController{cartSvc: cartSvc}
}

func toCartResp(cart *model.Cart) dto.CartResp {
	items := make([]dto.CartItemResp, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, dto.CartItemResp{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return dto.CartResp{ID: cart.ID, StylistID: cart.StylistID, Items: items}
}

// stylistIDQuery 发型师 ID 来自查询参数
func stylistIDQuery(ctx *gin.Context) int64 {
	id, err := strconv.ParseInt(ctx.Query("stylist_id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "缺少或非法的 stylist_id"})
		return 0
	}
	return id
}

// Get 获取购物车
func (c *CartController) Get(ctx *gin.Context) {
	stylistID := stylistIDQuery(ctx)
	if stylistID == 0 {
		return
	}

	cart, err := c.cartSvc.Get(ctx.Request.Context(), middleware.GetTenantID(ctx), stylistID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": toCartResp(cart)})
}

// AddItem 加购
func (c *CartController) AddItem(ctx *gin.Context) {
	var req dto.CartAddReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	cart, err := c.cartSvc.AddItem(ctx.Request.Context(),
		middleware.GetTenantID(ctx), req.StylistID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "已加入购物车", "data": toCartResp(cart)})
}

// RemoveItem 移除条目
func (c *CartController) RemoveItem(ctx *gin.Context) {
	itemID := parseID(ctx, "id")
	if itemID == 0 {
		return
	}
	stylistID := stylistIDQuery(ctx)
	if stylistID == 0 {
		return
	}

	cart, err := c.cartSvc.RemoveItem(ctx.Request.Context(),
		middleware.GetTenantID(ctx), stylistID, itemID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "已移除", "data": toCartResp(cart)})
}
