package model

import "time"

// ==================== 订单状态常量 ====================

// OrderStatus B2B 订单状态机
// PENDING → PAID → READY → PICKED_UP；PENDING|PAID|READY → CANCELLED
// PICKED_UP 与 CANCELLED 为终态，不允许再迁出
const (
	OrderStatusPending   = "PENDING"   // 待支付
	OrderStatusPaid      = "PAID"      // 已支付
	OrderStatusReady     = "READY"     // 备货完成待自提
	OrderStatusPickedUp  = "PICKED_UP" // 已自提（终态）
	OrderStatusCancelled = "CANCELLED" // 已取消（终态）
)

// PaymentMethod 支付方式
const (
	PaymentMethodBilling = "BILLING" // 月结记账，下单即视为已支付
	PaymentMethodCard    = "CARD"    // 卡支付，等待外部扣款回调
)

// ==================== Order 订单主表 ====================

// Order 发型师（分销商）对租户的 B2B 采购订单
type Order struct {
	BaseModel
	TenantID  int64 `gorm:"index;not null"`
	StylistID int64 `gorm:"index;not null"`

	OrderNumber string `gorm:"size:64;uniqueIndex;not null"`

	Status        string `gorm:"size:20;index;default:PENDING"`
	PaymentMethod string `gorm:"size:20"`

	// 金额（分为单位存储）
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64

	Notes string `gorm:"type:text"`

	PaidAt      *time.Time
	ReadyAt     *time.Time
	PickedUpAt  *time.Time
	CancelledAt *time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// ==================== OrderItem 订单行 ====================

// OrderItem 下单时刻的商品快照，创建后不可变
// 即使源商品行后续被同步修改或删除，快照保持原值
type OrderItem struct {
	BaseModel
	OrderID   int64 `gorm:"index;not null"`
	ProductID int64 `gorm:"index"`

	Title          string `gorm:"size:255"`
	ImageURL       string `gorm:"size:512"`
	UnitPriceCents int64
	Quantity       int
	LineTotalCents int64

	// 下单时商品是否参与库存追踪，取消回补库存只看该快照
	Tracked bool `gorm:"default:true"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
