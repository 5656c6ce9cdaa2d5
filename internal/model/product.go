package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ==================== 定价方式常量 ====================

const (
	MarginTypePercentage = "PERCENTAGE" // base * (1 + value/100)
	MarginTypeFixed      = "FIXED"      // base + value
)

// ==================== Product 商品镜像表 ====================

// Product 本地商品镜像行，一行对应远端一个 (商品, 变体) 组合
// 自然键 (connection_id, platform_product_id, platform_variant_id) 唯一，
// 并发同步时靠该唯一约束防重，应用层不加锁
// 只由同步引擎创建/更新；全量同步缺失或 webhook 上报删除时删除
type Product struct {
	BaseModel
	ConnectionID int64       `gorm:"not null;uniqueIndex:idx_conn_product_variant,priority:1"`
	Connection   *Connection `gorm:"foreignKey:ConnectionID"`
	TenantID     int64       `gorm:"index;not null"` // 冗余租户 ID，校验归属时免 join

	// --- 远端身份 ---
	PlatformProductID string `gorm:"size:64;not null;uniqueIndex:idx_conn_product_variant,priority:2;index:idx_conn_platform_product"`
	PlatformVariantID string `gorm:"size:64;not null;uniqueIndex:idx_conn_product_variant,priority:3"`
	InventoryItemID   string `gorm:"size:64"` // 远端库存项 ID，出站库存推送用

	// --- 基本信息 ---
	Title        string         `gorm:"size:255"`
	VariantTitle string         `gorm:"size:255"`
	Description  string         `gorm:"type:text"`
	Vendor       string         `gorm:"size:128"`
	ProductType  string         `gorm:"size:128"`
	SKU          string         `gorm:"size:100;index"`
	Images       pq.StringArray `gorm:"type:text[]"`

	// --- 价格（分为单位存储） ---
	PriceCents          int64  `gorm:"default:0"`
	CompareAtPriceCents int64  `gorm:"default:0"`
	CostCents           *int64 // 采购成本，未设置时定价回落到远端售价

	// --- 库存 ---
	InventoryQuantity int  `gorm:"default:0"` // 不变式：永不为负
	InventoryTracked  bool `gorm:"default:true"`
	LowStockThreshold *int // 为空时用租户默认阈值

	// --- 商品级定价覆盖（为空时用租户默认） ---
	MarginType      *string          `gorm:"size:20"`
	MarginValue     *decimal.Decimal `gorm:"type:numeric(12,4)"`
	CommissionType  *string          `gorm:"size:20"`
	CommissionValue *decimal.Decimal `gorm:"type:numeric(12,4)"`

	LastSyncedAt *time.Time
}

func (Product) TableName() string {
	return "products"
}

// NaturalKey 自然键字符串（connection 范围内）
func (p *Product) NaturalKey() string {
	return p.PlatformProductID + "|" + p.PlatformVariantID
}
