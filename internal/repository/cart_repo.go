package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shopify_sync_v1/internal/model"
)

// ==================== 接口定义 ====================

// CartRepository 购物车仓储接口
type CartRepository interface {
	// GetOrCreate 获取 (租户, 发型师) 的购物车，不存在则创建
	GetOrCreate(ctx context.Context, tenantID, stylistID int64) (*model.Cart, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID int64) error
	Clear(ctx context.Context, cartID int64) error

	// 事务
	WithTx(tx *gorm.DB) CartRepository
}

// ==================== 仓储实现 ====================

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepo{db: tx}
}

func (r *cartRepo) GetOrCreate(ctx context.Context, tenantID, stylistID int64) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND stylist_id = ?", tenantID, stylistID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = model.Cart{TenantID: tenantID, StylistID: stylistID}
		if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem 同商品重复加购时累加数量
func (r *cartRepo) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(&model.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
		}).Error
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&item).
		Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

func (r *cartRepo) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Delete(&model.CartItem{}).Error
}

func (r *cartRepo) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
