package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/internal/api/dto"
	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/service"
)

// ConnectionController 平台连接控制器
type ConnectionController struct {
	connSvc *service.ConnectionService
}

// NewConnectionController 创建连接控制器
func NewConnectionController(connSvc *service.ConnectionService) *ConnectionController {
	return &ConnectionController{connSvc: connSvc}
}

// toConnectionResp 凭证字段不出响应
func toConnectionResp(conn *model.Connection) dto.ConnectionResp {
	return dto.ConnectionResp{
		ID:         conn.ID,
		ShopDomain: conn.ShopDomain,
		IsActive:   conn.IsActive,
		LastSyncAt: conn.LastSyncAt,
		CreatedAt:  conn.CreatedAt,
	}
}

// Create 绑定外部店铺
func (c *ConnectionController) Create(ctx *gin.Context) {
	var req dto.ConnectionCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	conn, err := c.connSvc.Create(ctx.Request.Context(),
		middleware.GetTenantID(ctx), req.ShopDomain, req.AccessToken)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "店铺绑定成功",
		"data":    toConnectionResp(conn),
	})
}

// List 连接列表
func (c *ConnectionController) List(ctx *gin.Context) {
	conns, err := c.connSvc.List(ctx.Request.Context(), middleware.GetTenantID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	list := make([]dto.ConnectionResp, 0, len(conns))
	for i := range conns {
		list = append(list, toConnectionResp(&conns[i]))
	}
	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": dto.ConnectionListResp{Total: int64(len(list)), List: list},
	})
}

// UpdateToken 轮换访问令牌
func (c *ConnectionController) UpdateToken(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req struct {
		AccessToken string `json:"access_token" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	if err := c.connSvc.UpdateToken(ctx.Request.Context(),
		middleware.GetTenantID(ctx), id, req.AccessToken); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "令牌已更新"})
}

// Deactivate 停用连接
func (c *ConnectionController) Deactivate(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	if err := c.connSvc.Deactivate(ctx.Request.Context(), middleware.GetTenantID(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "连接已停用"})
}
