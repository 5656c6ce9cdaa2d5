package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopify_sync_v1/internal/model"
)

// ==================== 接口定义 ====================

// AffiliateOrderRepository 推荐订单仓储接口
type AffiliateOrderRepository interface {
	// CreateIfAbsent 以 platform_order_id 唯一约束做幂等插入
	// 已存在时不报错、返回 false，重复 webhook 投递不产生第二行
	CreateIfAbsent(ctx context.Context, order *model.AffiliateOrder) (bool, error)
	GetByPlatformOrderID(ctx context.Context, platformOrderID string) (*model.AffiliateOrder, error)
	MarkFulfilled(ctx context.Context, id int64, at time.Time) error
	VoidCommission(ctx context.Context, id int64) error
	ListByTenant(ctx context.Context, tenantID int64, page, pageSize int) ([]model.AffiliateOrder, int64, error)
}

// ==================== 仓储实现 ====================

type affiliateOrderRepo struct {
	db *gorm.DB
}

// NewAffiliateOrderRepository 创建推荐订单仓储
func NewAffiliateOrderRepository(db *gorm.DB) AffiliateOrderRepository {
	return &affiliateOrderRepo{db: db}
}

func (r *affiliateOrderRepo) CreateIfAbsent(ctx context.Context, order *model.AffiliateOrder) (bool, error) {
	// 先查再插：冲突跳过主行时 GORM 仍会写关联行，必须提前拦截；
	// OnConflict 兜底并发下的先查后插窗口
	existing, err := r.GetByPlatformOrderID(ctx, order.PlatformOrderID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform_order_id"}},
		DoNothing: true,
	}).Create(order)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *affiliateOrderRepo) GetByPlatformOrderID(ctx context.Context, platformOrderID string) (*model.AffiliateOrder, error) {
	var order model.AffiliateOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("platform_order_id = ?", platformOrderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *affiliateOrderRepo) MarkFulfilled(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.AffiliateOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"order_status": model.AffiliateOrderFulfilled,
			"fulfilled_at": at,
		}).Error
}

// VoidCommission 作废佣金但保留订单行，便于对账
func (r *affiliateOrderRepo) VoidCommission(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.AffiliateOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"order_status":      model.AffiliateOrderCancelled,
			"commission_status": model.CommissionStatusVoid,
		}).Error
}

func (r *affiliateOrderRepo) ListByTenant(ctx context.Context, tenantID int64, page, pageSize int) ([]model.AffiliateOrder, int64, error) {
	var orders []model.AffiliateOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&model.AffiliateOrder{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&orders).Error
	return orders, total, err
}
