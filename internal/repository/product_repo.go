package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopify_sync_v1/internal/model"
)

// ==================== 接口定义 ====================

// InventoryStats 库存聚合统计，按需计算不做缓存
type InventoryStats struct {
	TotalStock      int64 `json:"total_stock"`
	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`
	TotalValueCents int64 `json:"total_value_cents"` // Σ quantity × price
}

// ProductRepository 商品镜像仓储接口
type ProductRepository interface {
	// 同步侧
	Upsert(ctx context.Context, product *model.Product) error
	ListNaturalKeys(ctx context.Context, connectionID int64) (map[string]struct{}, error)
	DeleteByNaturalKeys(ctx context.Context, connectionID int64, keys []string) (int64, error)
	DeleteByPlatformProduct(ctx context.Context, connectionID int64, platformProductID string) (int64, error)

	// 查询
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByNaturalKey(ctx context.Context, connectionID int64, platformProductID, platformVariantID string) (*model.Product, error)
	GetByInventoryItem(ctx context.Context, connectionID int64, inventoryItemID string) (*model.Product, error)
	ListByTenant(ctx context.Context, tenantID int64, page, pageSize int) ([]model.Product, int64, error)
	ListLowStock(ctx context.Context, tenantID int64, defaultThreshold int) ([]model.Product, error)
	Stats(ctx context.Context, tenantID int64, defaultThreshold int) (*InventoryStats, error)

	// 库存计数器
	// AdjustQuantity 条件更新：current + delta < 0 时不落库，返回 false
	AdjustQuantity(ctx context.Context, id int64, delta int) (bool, error)
	SetQuantity(ctx context.Context, id int64, quantity int) error

	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

// Upsert 自然键 upsert，同步重跑安全
// 只覆盖同步归属字段，本地配置（成本、阈值、定价覆盖、是否追踪）不动
func (r *productRepo) Upsert(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "connection_id"},
			{Name: "platform_product_id"},
			{Name: "platform_variant_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "variant_title", "description", "vendor", "product_type",
			"sku", "images", "price_cents", "compare_at_price_cents",
			"inventory_quantity", "inventory_item_id", "last_synced_at", "updated_at",
		}),
	}).Create(product).Error
}

func (r *productRepo) ListNaturalKeys(ctx context.Context, connectionID int64) (map[string]struct{}, error) {
	var rows []struct {
		PlatformProductID string
		PlatformVariantID string
	}
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("connection_id = ?", connectionID).
		Select("platform_product_id", "platform_variant_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		keys[row.PlatformProductID+"|"+row.PlatformVariantID] = struct{}{}
	}
	return keys, nil
}

func (r *productRepo) DeleteByNaturalKeys(ctx context.Context, connectionID int64, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	// || 拼接在 postgres 与 sqlite 下行为一致
	res := r.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Where("platform_product_id || '|' || platform_variant_id IN ?", keys).
		Delete(&model.Product{})
	return res.RowsAffected, res.Error
}

func (r *productRepo) DeleteByPlatformProduct(ctx context.Context, connectionID int64, platformProductID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("connection_id = ? AND platform_product_id = ?", connectionID, platformProductID).
		Delete(&model.Product{})
	return res.RowsAffected, res.Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByNaturalKey(ctx context.Context, connectionID int64, platformProductID, platformVariantID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("connection_id = ? AND platform_product_id = ? AND platform_variant_id = ?",
			connectionID, platformProductID, platformVariantID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByInventoryItem(ctx context.Context, connectionID int64, inventoryItemID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("connection_id = ? AND inventory_item_id = ?", connectionID, inventoryItemID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) ListByTenant(ctx context.Context, tenantID int64, page, pageSize int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	err := query.Order("updated_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListLowStock(ctx context.Context, tenantID int64, defaultThreshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND inventory_tracked = ?", tenantID, true).
		Where("inventory_quantity <= COALESCE(low_stock_threshold, ?)", defaultThreshold).
		Order("inventory_quantity ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Stats(ctx context.Context, tenantID int64, defaultThreshold int) (*InventoryStats, error) {
	var stats InventoryStats
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("tenant_id = ? AND inventory_tracked = ?", tenantID, true).
		Select(
			"COALESCE(SUM(inventory_quantity), 0) AS total_stock, " +
				"COALESCE(SUM(CASE WHEN inventory_quantity = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock_count, " +
				"COALESCE(SUM(inventory_quantity * price_cents), 0) AS total_value_cents").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	// 低库存计数单独算，阈值按行 COALESCE 到默认值
	err = r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("tenant_id = ? AND inventory_tracked = ?", tenantID, true).
		Where("inventory_quantity <= COALESCE(low_stock_threshold, ?)", defaultThreshold).
		Count(&stats.LowStockCount).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AdjustQuantity 条件增减库存
// WHERE 带下界校验，并发下两个请求不会同时通过检查再各自扣减
func (r *productRepo) AdjustQuantity(ctx context.Context, id int64, delta int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND inventory_quantity + ? >= 0", id, delta).
		Update("inventory_quantity", gorm.Expr("inventory_quantity + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepo) SetQuantity(ctx context.Context, id int64, quantity int) error {
	if quantity < 0 {
		quantity = 0
	}
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Update("inventory_quantity", quantity).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}
