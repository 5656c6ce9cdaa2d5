package service

import (
	"context"

	"go.uber.org/zap"

	"shopify_sync_v1/internal/config"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/apperr"
	"shopify_sync_v1/pkg/shopify"
)

// InventoryService 库存台账
// 本地库存是带下界的计数器：调整永不把数量变负，拒绝时不产生任何部分修改
type InventoryService struct {
	productRepo  repository.ProductRepository
	connRepo     repository.ConnectionRepository
	settingsRepo repository.SettingsRepository
	factory      ClientFactory
	defaults     config.DefaultsConfig
	logger       *zap.Logger
}

// NewInventoryService 创建库存服务
func NewInventoryService(
	productRepo repository.ProductRepository,
	connRepo repository.ConnectionRepository,
	settingsRepo repository.SettingsRepository,
	factory ClientFactory,
	defaults config.DefaultsConfig,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		productRepo:  productRepo,
		connRepo:     connRepo,
		settingsRepo: settingsRepo,
		factory:      factory,
		defaults:     defaults,
		logger:       logger,
	}
}

// getOwned 取商品并校验租户归属，仅凭资源 ID 不构成授权
func (s *InventoryService) getOwned(ctx context.Context, tenantID, productID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, &apperr.ValidationError{Message: "商品不存在"}
	}
	if product.TenantID != tenantID {
		return nil, &apperr.ValidationError{Message: "商品不属于当前租户"}
	}
	return product, nil
}

// Adjust 增量调整本地库存
// current + delta < 0 时返回 InsufficientStockError（携带当前数量），不落任何修改
func (s *InventoryService) Adjust(ctx context.Context, tenantID, productID int64, delta int) (*model.Product, error) {
	product, err := s.getOwned(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	ok, err := s.productRepo.AdjustQuantity(ctx, productID, delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &apperr.InsufficientStockError{
			ProductID: productID,
			Requested: -delta,
			Available: product.InventoryQuantity,
		}
	}
	return s.productRepo.GetByID(ctx, productID)
}

// SetAbsolute 绝对值设置本地库存，负数钳制为 0，幂等
func (s *InventoryService) SetAbsolute(ctx context.Context, tenantID, productID int64, quantity int) (*model.Product, error) {
	if _, err := s.getOwned(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	if err := s.productRepo.SetQuantity(ctx, productID, quantity); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, productID)
}

// PushAdjustment 把本地增量推送到远端平台（出站方向）
// 需要先解析一个启用中的履约地点与变体的远端库存项 ID
func (s *InventoryService) PushAdjustment(ctx context.Context, tenantID, productID int64, delta int) error {
	product, err := s.getOwned(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if product.InventoryItemID == "" {
		return &apperr.ValidationError{Message: "商品缺少远端库存项 ID"}
	}

	conn, err := s.connRepo.GetByID(ctx, product.ConnectionID)
	if err != nil {
		return err
	}
	client, err := s.factory(conn)
	if err != nil {
		return err
	}

	locations, err := client.GetLocations(ctx)
	if err != nil {
		return err
	}
	var location *shopify.RemoteLocation
	for i := range locations {
		if locations[i].IsActive {
			location = &locations[i]
			break
		}
	}
	if location == nil {
		return &apperr.ValidationError{Message: "没有可用的履约地点"}
	}

	return client.AdjustInventory(ctx,
		shopify.GID("InventoryItem", product.InventoryItemID),
		location.ID, delta)
}

// ApplyRemoteLevel 应用远端库存水位 webhook（入站方向）
// 远端上报的是绝对值，直接落库（钳制 ≥0）；本地没有对应行时静默忽略
func (s *InventoryService) ApplyRemoteLevel(ctx context.Context, conn *model.Connection, inventoryItemID string, available int) error {
	product, err := s.productRepo.GetByInventoryItem(ctx, conn.ID, inventoryItemID)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}
	return s.productRepo.SetQuantity(ctx, product.ID, available)
}

// lowStockThreshold 租户默认低库存阈值
func (s *InventoryService) lowStockThreshold(ctx context.Context, tenantID int64) int {
	settings, err := s.settingsRepo.GetByTenant(ctx, tenantID)
	if err != nil || settings == nil {
		return s.defaults.LowStockThreshold
	}
	return settings.DefaultLowStockThreshold
}

// ListLowStock 低库存商品（quantity <= 阈值，商品级阈值优先）
func (s *InventoryService) ListLowStock(ctx context.Context, tenantID int64) ([]model.Product, error) {
	return s.productRepo.ListLowStock(ctx, tenantID, s.lowStockThreshold(ctx, tenantID))
}

// Stats 库存聚合统计，按需计算
func (s *InventoryService) Stats(ctx context.Context, tenantID int64) (*repository.InventoryStats, error) {
	return s.productRepo.Stats(ctx, tenantID, s.lowStockThreshold(ctx, tenantID))
}
