package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopify_sync_v1/internal/model"
)

// ==================== 接口定义 ====================

// SettingsRepository 租户配置仓储接口
type SettingsRepository interface {
	// GetByTenant 不存在时返回 (nil, nil)，由服务层回落到全局默认
	GetByTenant(ctx context.Context, tenantID int64) (*model.TenantSettings, error)
	Upsert(ctx context.Context, settings *model.TenantSettings) error
}

// ==================== 仓储实现 ====================

type settingsRepo struct {
	db *gorm.DB
}

// NewSettingsRepository 创建租户配置仓储
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) GetByTenant(ctx context.Context, tenantID int64) (*model.TenantSettings, error) {
	var settings model.TenantSettings
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, settings *model.TenantSettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"default_margin_type", "default_margin_value",
			"default_commission_type", "default_commission_value",
			"default_low_stock_threshold", "tax_rate_bps", "updated_at",
		}),
	}).Create(settings).Error
}
