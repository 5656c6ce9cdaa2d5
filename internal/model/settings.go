package model

import "github.com/shopspring/decimal"

// ==================== TenantSettings 租户定价默认值 ====================

// TenantSettings 租户级默认配置，商品级覆盖优先于这里
type TenantSettings struct {
	BaseModel
	TenantID int64 `gorm:"uniqueIndex;not null"`

	DefaultMarginType  string          `gorm:"size:20;default:PERCENTAGE"`
	DefaultMarginValue decimal.Decimal `gorm:"type:numeric(12,4)"`

	DefaultCommissionType  string          `gorm:"size:20;default:PERCENTAGE"`
	DefaultCommissionValue decimal.Decimal `gorm:"type:numeric(12,4)"`

	DefaultLowStockThreshold int `gorm:"default:5"`

	// 税率（基点，100 = 1%）
	TaxRateBps int `gorm:"default:0"`
}

func (TenantSettings) TableName() string {
	return "tenant_settings"
}
