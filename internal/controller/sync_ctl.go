package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/service"
)

// SyncController 同步控制器
type SyncController struct {
	syncSvc *service.SyncService
	connSvc *service.ConnectionService
}

// NewSyncController 创建同步控制器
func NewSyncController(syncSvc *service.SyncService, connSvc *service.ConnectionService) *SyncController {
	return &SyncController{syncSvc: syncSvc, connSvc: connSvc}
}

// ownsConnection 校验连接归属，避免跨租户触发他人连接的同步
func (c *SyncController) ownsConnection(ctx *gin.Context, connectionID int64) bool {
	tenantID := middleware.GetTenantID(ctx)
	conns, err := c.connSvc.List(ctx.Request.Context(), tenantID)
	if err != nil {
		respondError(ctx, err)
		return false
	}
	for i := range conns {
		if conns[i].ID == connectionID {
			return true
		}
	}
	ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "连接不属于当前租户"})
	return false
}

// TriggerFullSync 手动触发单连接全量同步
// 同步在请求内同步执行并返回汇总，部分条目失败不算请求失败
func (c *SyncController) TriggerFullSync(ctx *gin.Context) {
	connectionID := parseID(ctx, "connection_id")
	if connectionID == 0 {
		return
	}
	if !c.ownsConnection(ctx, connectionID) {
		return
	}

	summary, err := c.syncSvc.FullSync(ctx.Request.Context(), connectionID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "全量同步完成",
		"data":    summary,
	})
}

// LastSummary 最近一次全量同步的汇总（进程内记录，重启后为空）
func (c *SyncController) LastSummary(ctx *gin.Context) {
	connectionID := parseID(ctx, "connection_id")
	if connectionID == 0 {
		return
	}
	if !c.ownsConnection(ctx, connectionID) {
		return
	}

	run := c.syncSvc.LastRun(connectionID)
	if run == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "尚无同步记录"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": run})
}
