package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 分佣状态常量 ====================

const (
	CommissionStatusPending = "PENDING" // 待结算
	CommissionStatusVoid    = "VOID"    // 已作废（远端订单取消）
)

// AffiliateOrderStatus 远端推荐订单状态
const (
	AffiliateOrderCreated   = "CREATED"
	AffiliateOrderFulfilled = "FULFILLED"
	AffiliateOrderCancelled = "CANCELLED"
)

// ==================== AffiliateOrder 推荐订单 ====================

// AffiliateOrder 仅由携带推荐标记的远端订单 webhook 创建
// platform_order_id 唯一——webhook 重复投递的幂等键，重复事件不产生第二行
// 佣金在 orders/create 处理时刻计算并固定，之后商品定价变化不回溯
type AffiliateOrder struct {
	BaseModel
	ConnectionID int64 `gorm:"index;not null"`
	TenantID     int64 `gorm:"index;not null"`
	StylistID    int64 `gorm:"index;not null"` // 推荐的发型师

	PlatformOrderID string `gorm:"size:64;uniqueIndex;not null"`

	CustomerInfo datatypes.JSONMap `gorm:"type:jsonb"`

	TotalCents      int64
	CommissionCents int64

	OrderStatus      string `gorm:"size:20;default:CREATED"`
	CommissionStatus string `gorm:"size:20;index;default:PENDING"`

	FulfilledAt *time.Time

	Items []AffiliateOrderItem `gorm:"foreignKey:AffiliateOrderID"`
}

func (AffiliateOrder) TableName() string {
	return "affiliate_orders"
}

// ==================== AffiliateOrderItem 推荐订单行 ====================

// AffiliateOrderItem 远端订单行镜像 + 按行计算的佣金
type AffiliateOrderItem struct {
	BaseModel
	AffiliateOrderID int64 `gorm:"index;not null"`

	PlatformProductID string `gorm:"size:64"`
	PlatformVariantID string `gorm:"size:64"`

	Title           string `gorm:"size:255"`
	UnitPriceCents  int64
	Quantity        int
	CommissionCents int64
}

func (AffiliateOrderItem) TableName() string {
	return "affiliate_order_items"
}
