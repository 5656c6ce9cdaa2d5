package service

import (
	"context"

	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/apperr"
)

// ==================== CartService 购物车 ====================

// CartService 加购只做归属与存在性校验，库存校验留到下单时
// 购物车里的数量不代表占用，真正的扣减在订单事务里
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// Get 获取购物车（不存在则创建空车）
func (s *CartService) Get(ctx context.Context, tenantID, stylistID int64) (*model.Cart, error) {
	return s.cartRepo.GetOrCreate(ctx, tenantID, stylistID)
}

// AddItem 加购，同商品重复加购累加数量
func (s *CartService) AddItem(ctx context.Context, tenantID, stylistID, productID int64, quantity int) (*model.Cart, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, &apperr.ValidationError{Message: "商品不存在"}
	}
	if product.TenantID != tenantID {
		return nil, &apperr.ValidationError{Message: "商品不属于当前租户"}
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, tenantID, stylistID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.cartRepo.GetOrCreate(ctx, tenantID, stylistID)
}

// RemoveItem 移除购物车条目
func (s *CartService) RemoveItem(ctx context.Context, tenantID, stylistID, itemID int64) (*model.Cart, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, tenantID, stylistID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.cartRepo.GetOrCreate(ctx, tenantID, stylistID)
}
