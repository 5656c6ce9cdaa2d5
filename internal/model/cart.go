package model

// ==================== Cart 购物车 ====================

// Cart 发型师在租户下的临时选购区，每 (租户, 发型师) 一条
// 创建订单时随订单事务原子清空
type Cart struct {
	BaseModel
	TenantID  int64 `gorm:"not null;uniqueIndex:idx_tenant_stylist,priority:1"`
	StylistID int64 `gorm:"not null;uniqueIndex:idx_tenant_stylist,priority:2"`

	Items []CartItem `gorm:"foreignKey:CartID"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem 购物车条目
type CartItem struct {
	BaseModel
	CartID    int64 `gorm:"not null;uniqueIndex:idx_cart_product,priority:1"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_cart_product,priority:2"`
	Quantity  int   `gorm:"default:1"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
