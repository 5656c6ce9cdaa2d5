package model

import "time"

// ==================== Connection 平台连接 ====================

// Connection 租户与 Shopify 店铺的连接，每租户一条
// 断开连接时仅置 is_active=false，不做物理删除
type Connection struct {
	BaseModel
	TenantID int64 `gorm:"index;not null"`

	// 归一化后的店铺域名（小写、去协议、去结尾斜杠），用于 webhook 精确反查租户
	ShopDomain string `gorm:"size:255;uniqueIndex;not null"`

	// 静态加密后的访问令牌：b64(salt):b64(iv):b64(tag):b64(ct)
	AccessToken string `gorm:"type:text;not null"`

	IsActive   bool `gorm:"default:true;index"`
	LastSyncAt *time.Time
}

func (Connection) TableName() string {
	return "connections"
}
