package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_sync_v1/internal/api/dto"
	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
)

// SettingsController 租户定价配置控制器
type SettingsController struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsController 创建配置控制器
func NewSettingsController(settingsRepo repository.SettingsRepository) *SettingsController {
	return &SettingsController{settingsRepo: settingsRepo}
}

// Get 当前租户配置，未配置时返回空对象
func (c *SettingsController) Get(ctx *gin.Context) {
	settings, err := c.settingsRepo.GetByTenant(ctx.Request.Context(), middleware.GetTenantID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if settings == nil {
		ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": gin.H{}})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": settings})
}

// Upsert 写入租户配置
func (c *SettingsController) Upsert(ctx *gin.Context) {
	var req dto.SettingsUpsertReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	settings := &model.TenantSettings{
		TenantID:                 middleware.GetTenantID(ctx),
		DefaultMarginType:        req.DefaultMarginType,
		DefaultMarginValue:       req.DefaultMarginValue,
		DefaultCommissionType:    req.DefaultCommissionType,
		DefaultCommissionValue:   req.DefaultCommissionValue,
		DefaultLowStockThreshold: req.DefaultLowStockThreshold,
		TaxRateBps:               req.TaxRateBps,
	}
	if err := c.settingsRepo.Upsert(ctx.Request.Context(), settings); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "配置已保存", "data": settings})
}
