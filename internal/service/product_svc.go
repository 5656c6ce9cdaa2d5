package service

import (
	"context"
	"time"

	"shopify_sync_v1/internal/api/dto"
	"shopify_sync_v1/internal/config"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/apperr"
)

// ==================== ProductService 商品查询与定价覆盖 ====================

// ProductService 本地商品镜像的读侧 + 商品级定价覆盖
// 镜像内容本身只归同步引擎写，这里只动定价/库存配置列
type ProductService struct {
	productRepo  repository.ProductRepository
	settingsRepo repository.SettingsRepository
	pricing      *PricingService
	defaults     config.DefaultsConfig
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	settingsRepo repository.SettingsRepository,
	pricing *PricingService,
	defaults config.DefaultsConfig,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		settingsRepo: settingsRepo,
		pricing:      pricing,
		defaults:     defaults,
	}
}

// tenantDefaults 解析租户定价默认值
func (s *ProductService) tenantDefaults(ctx context.Context, tenantID int64) (PricingDefaults, error) {
	settings, err := s.settingsRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return PricingDefaults{}, err
	}
	return DefaultsFromSettings(settings, s.defaults), nil
}

// toResp 组装响应，发型师价与佣金按当前配置即时计算
func (s *ProductService) toResp(product *model.Product, defaults PricingDefaults) dto.ProductResp {
	return dto.ProductResp{
		ID:                product.ID,
		PlatformProductID: product.PlatformProductID,
		PlatformVariantID: product.PlatformVariantID,
		Title:             product.Title,
		VariantTitle:      product.VariantTitle,
		Vendor:            product.Vendor,
		ProductType:       product.ProductType,
		SKU:               product.SKU,
		Images:            product.Images,
		PriceCents:        product.PriceCents,
		CostCents:         product.CostCents,
		StylistPriceCents: s.pricing.StylistPriceCents(product, defaults),
		CommissionCents:   s.pricing.CommissionCents(product, defaults),
		InventoryQuantity: product.InventoryQuantity,
		InventoryTracked:  product.InventoryTracked,
		LowStockThreshold: product.LowStockThreshold,
		LastSyncedAt:      product.LastSyncedAt,
	}
}

// List 分页商品列表
func (s *ProductService) List(ctx context.Context, tenantID int64, page, pageSize int) (*dto.ProductListResp, error) {
	defaults, err := s.tenantDefaults(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	products, total, err := s.productRepo.ListByTenant(ctx, tenantID, page, pageSize)
	if err != nil {
		return nil, err
	}

	list := make([]dto.ProductResp, 0, len(products))
	for i := range products {
		list = append(list, s.toResp(&products[i], defaults))
	}
	return &dto.ProductListResp{Total: total, List: list}, nil
}

// Get 商品详情（校验租户归属）
func (s *ProductService) Get(ctx context.Context, tenantID, productID int64) (*dto.ProductResp, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, &apperr.ValidationError{Message: "商品不存在"}
	}
	if product.TenantID != tenantID {
		return nil, &apperr.ValidationError{Message: "商品不属于当前租户"}
	}

	defaults, err := s.tenantDefaults(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := s.toResp(product, defaults)
	return &resp, nil
}

// UpdatePricing 更新商品级定价覆盖
// margin/commission 的 type 与 value 必须成对，单边覆盖会产生悬空配置
func (s *ProductService) UpdatePricing(ctx context.Context, tenantID, productID int64, req dto.ProductPricingReq) (*dto.ProductResp, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, &apperr.ValidationError{Message: "商品不存在"}
	}
	if product.TenantID != tenantID {
		return nil, &apperr.ValidationError{Message: "商品不属于当前租户"}
	}

	if (req.MarginType == nil) != (req.MarginValue == nil) {
		return nil, &apperr.ValidationError{Message: "margin_type 与 margin_value 必须同时提供"}
	}
	if (req.CommissionType == nil) != (req.CommissionValue == nil) {
		return nil, &apperr.ValidationError{Message: "commission_type 与 commission_value 必须同时提供"}
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if req.CostCents != nil {
		fields["cost_cents"] = *req.CostCents
	}
	if req.MarginType != nil {
		fields["margin_type"] = *req.MarginType
		fields["margin_value"] = *req.MarginValue
	}
	if req.CommissionType != nil {
		fields["commission_type"] = *req.CommissionType
		fields["commission_value"] = *req.CommissionValue
	}
	if req.LowStockThreshold != nil {
		fields["low_stock_threshold"] = *req.LowStockThreshold
	}
	if req.InventoryTracked != nil {
		fields["inventory_tracked"] = *req.InventoryTracked
	}

	if err := s.productRepo.UpdateFields(ctx, productID, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, productID)
}
